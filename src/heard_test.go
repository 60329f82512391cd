package kissgate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigiHops(t *testing.T) {
	tests := []struct {
		name  string
		digis []string
		hops  int
	}{
		{"direct", nil, 0},
		{"not repeated yet", []string{"WIDE1-1", "WIDE2-1"}, 0},
		{"one", []string{"W1XYZ-1*", "WIDE2-1"}, 1},
		{"two", []string{"W1XYZ-1*", "W2XYZ*", "WIDE2-1"}, 2},
		{"used up WIDEn-0 not counted", []string{"K1EQX-7*", "WIDE1*", "N3LLO-3*", "WIDE2*"}, 2},
		{"single WIDEn-0 is a hop", []string{"WIDE1*"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hops, digiHops(dedupePacket("W1ABC-5", ">x", tt.digis...)))
		})
	}
}

func TestHeardList_ShortestPath(t *testing.T) {
	var h = NewHeardList()
	var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	h.Save(dedupePacket("W1ABC-5", ">x"), now)
	h.Save(dedupePacket("W1ABC-5", ">x", "W1XYZ-1*"), now.Add(2*time.Second))

	var list = h.List()
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].Hops)
	assert.Equal(t, 1, list[0].Count)
	assert.Equal(t, now, list[0].LastHeard)

	// Long enough afterwards the longer path is news.
	h.Save(dedupePacket("W1ABC-5", ">y", "W1XYZ-1*"), now.Add(time.Minute))
	list = h.List()
	assert.Equal(t, 1, list[0].Hops)
	assert.Equal(t, 2, list[0].Count)
}

func TestHeardList_Count(t *testing.T) {
	var h = NewHeardList()
	var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	h.Save(dedupePacket("W1AAA", ">x"), now)
	h.Save(dedupePacket("W1BBB", ">x", "W1XYZ-1*"), now)
	h.Save(dedupePacket("W1CCC", ">x", "W1XYZ-1*", "W2XYZ*", "W3XYZ*"), now)
	h.Save(dedupePacket("W1DDD", ">x"), now.Add(-time.Hour))

	assert.Equal(t, 1, h.Count(0, 30*time.Minute, now))
	assert.Equal(t, 2, h.Count(2, 30*time.Minute, now))
	assert.Equal(t, 3, h.Count(8, 30*time.Minute, now))
	assert.Equal(t, 4, h.Count(8, 2*time.Hour, now))

	assert.True(t, h.WasRecentlyNearby("W1BBB", 2, 30*time.Minute, now))
	assert.False(t, h.WasRecentlyNearby("W1CCC", 2, 30*time.Minute, now))
	assert.False(t, h.WasRecentlyNearby("W1DDD", 2, 30*time.Minute, now))
	assert.False(t, h.WasRecentlyNearby("W9ZZZ", 2, 30*time.Minute, now))
}

func TestHeardList_Order(t *testing.T) {
	var h = NewHeardList()
	var now = time.Now()

	h.Save(dedupePacket("W1AAA", ">x"), now.Add(-2*time.Minute))
	h.Save(dedupePacket("W1BBB", ">x"), now)
	h.Save(dedupePacket("W1CCC", ">x"), now.Add(-time.Minute))

	var calls []string
	for _, s := range h.List() {
		calls = append(calls, s.Callsign)
	}
	assert.Equal(t, []string{"W1BBB", "W1CCC", "W1AAA"}, calls)
}

func TestGateway_RecordsHeard(t *testing.T) {
	var g = testGateway(t, validConfig(), &fakeRadio{}) //nolint:exhaustruct

	g.HandleBytes(mustHex(t, philadelphiaKiss))

	var list = g.Heard().List()
	require.Len(t, list, 1)
	assert.Equal(t, "KIDE2-1", list[0].Callsign)
}

func TestHeardList_Get(t *testing.T) {
	var h = NewHeardList()
	var now = time.Now()
	h.Save(dedupePacket("W1AAA-7", ">x", "W1XYZ-1*"), now)

	var s, ok = h.Get("W1AAA-7")
	require.True(t, ok)
	assert.Equal(t, 1, s.Hops)
	assert.Equal(t, now, s.LastHeard)

	_, ok = h.Get("W1AAA")
	assert.False(t, ok)
}
