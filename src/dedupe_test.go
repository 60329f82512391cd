package kissgate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dedupePacket(src string, info string, digis ...string) *Ax25Packet {
	var p = &Ax25Packet{ //nolint:exhaustruct
		Destination: Ax25Address{Callsign: "APRS"}, //nolint:exhaustruct
		Control:     AX25_UI_FRAME,
		PID:         AX25_PID_NO_LAYER_3,
		Payload:     []byte(info),
	}
	p.Source, _ = ParseAddress(src)
	for _, d := range digis {
		var a, _ = ParseAddress(d)
		p.Digipeaters = append(p.Digipeaters, a)
	}
	return p
}

func TestDedupe_Disabled(t *testing.T) {
	var d = NewDedupe(0)
	var p = dedupePacket("N0CALL-1", ">hi")
	var now = time.Now()

	d.Remember(p, now)
	assert.True(t, d.Allow(p, now))
}

func TestDedupe_PathIgnored(t *testing.T) {
	var d = NewDedupe(30 * time.Second)
	var now = time.Now()

	d.Remember(dedupePacket("N0CALL-1", ">hi"), now)

	assert.False(t, d.Allow(dedupePacket("N0CALL-1", ">hi", "WIDE1-1*"), now.Add(5*time.Second)))
	assert.False(t, d.Allow(dedupePacket("N0CALL-1", ">hi\r\n"), now.Add(5*time.Second)))
	assert.True(t, d.Allow(dedupePacket("N0CALL-2", ">hi"), now.Add(5*time.Second)))
	assert.True(t, d.Allow(dedupePacket("N0CALL-1", ">bye"), now.Add(5*time.Second)))
}

func TestDedupe_Expires(t *testing.T) {
	var d = NewDedupe(30 * time.Second)
	var now = time.Now()
	var p = dedupePacket("N0CALL-1", ">hi")

	d.Remember(p, now)

	assert.False(t, d.Allow(p, now.Add(30*time.Second)))
	assert.True(t, d.Allow(p, now.Add(31*time.Second)))
}

func TestDedupe_HistoryWraps(t *testing.T) {
	var d = NewDedupe(time.Hour)
	var now = time.Now()
	var first = dedupePacket("N0CALL-1", ">first")

	d.Remember(first, now)
	for i := range RX2IG_HISTORY_MAX {
		d.Remember(dedupePacket("N0CALL-2", string(rune('A'+i))), now)
	}

	// Pushed out by newer entries.
	assert.True(t, d.Allow(first, now))
}

func TestDedupeCRC_SSIDZero(t *testing.T) {
	assert.NotEqual(t,
		DedupeCRC(dedupePacket("N0CALL", ">x")),
		DedupeCRC(dedupePacket("N0CALL-1", ">x")))
}
