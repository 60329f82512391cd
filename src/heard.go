package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Maintain a list of all stations heard over the radio.
 *
 * Description: Used for the status server and the counts in the
 *		periodic summary.  "Heard" here refers to the AX.25
 *		source station, not the digipeater that repeated it.
 *
 *		Nothing is ever deleted; a receive only iGate does not
 *		hear enough distinct stations for that to matter.
 *
 *------------------------------------------------------------------*/

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Shorter path wins if the same station is heard again this soon.
const HEARD_SHORTEST_PATH_WINDOW = 15 * time.Second

type HeardStation struct {
	Callsign  string    `json:"callsign"`
	Count     int       `json:"count"`
	Hops      int       `json:"hops"` // Digipeater hops before we heard it.  Zero when direct.
	LastHeard time.Time `json:"last_heard"`
}

type HeardList struct {
	mu       sync.Mutex
	stations map[string]*HeardStation
}

func NewHeardList() *HeardList {
	return &HeardList{stations: make(map[string]*HeardStation)} //nolint:exhaustruct
}

/*------------------------------------------------------------------
 *
 * Function:	digiHops
 *
 * Purpose:	How many digipeaters has it gone thru before we hear it?
 *
 * Description:	Count the addresses marked as "has been used."  Used
 *		WIDEn-0 are leftovers from a WIDEn-N being used up and
 *		were already counted by the digipeater that inserted
 *		its own call in front, so don't count them twice.
 *
 *------------------------------------------------------------------*/

func digiHops(p *Ax25Packet) int {
	var hops = 0
	for i, d := range p.Digipeaters {
		if d.WasDigipeated {
			hops = i + 1
		}
	}

	if hops > 1 {
		for _, d := range p.Digipeaters[:hops] {
			var c = d.Callsign
			if d.WasDigipeated && len(c) == 5 && strings.EqualFold(c[:4], "WIDE") && unicode.IsDigit(rune(c[4])) && d.SSID == 0 {
				hops--
			}
		}
	}

	return hops
}

/*------------------------------------------------------------------
 *
 * Function:	Save
 *
 * Purpose:	Save information about station heard over the radio.
 *
 * Description:	We might hear the same transmission several times.
 *		First direct, then thru various digipeater paths.
 *		We are interested in the shortest path if heard very
 *		recently.
 *
 *------------------------------------------------------------------*/

func (h *HeardList) Save(p *Ax25Packet, now time.Time) {
	var source = p.Source.String()
	var hops = digiHops(p)

	h.mu.Lock()
	defer h.mu.Unlock()

	var s = h.stations[source]
	if s == nil {
		h.stations[source] = &HeardStation{Callsign: source, Count: 1, Hops: hops, LastHeard: now}
		return
	}

	if hops > s.Hops && now.Sub(s.LastHeard) < HEARD_SHORTEST_PATH_WINDOW {
		stageLogger("rx").Debug("Heard again by a longer path", "src", source, "hops", hops, "was", s.Hops)
		return
	}

	s.Count++
	s.Hops = hops
	s.LastHeard = now
}

/*------------------------------------------------------------------
 *
 * Function:	Count
 *
 * Purpose:	Count local stations, like the figures in an IGate
 *		statistics report:
 *
 *			0 hops for DIR_CNT (heard directly)
 *			2 or 3 for LOC_CNT
 *			8 for RF_CNT
 *
 * Inputs:	maxHops	- Include only stations heard with this number
 *			  of digipeater hops or less.
 *
 *		within	- Include only stations heard this recently.
 *
 *------------------------------------------------------------------*/

func (h *HeardList) Count(maxHops int, within time.Duration, now time.Time) int {
	var since = now.Add(-within)

	h.mu.Lock()
	defer h.mu.Unlock()

	var count = 0
	for _, s := range h.stations {
		if !s.LastHeard.Before(since) && s.Hops <= maxHops {
			count++
		}
	}
	return count
}

// Was station heard directly or through at most maxHops, recently enough?
func (h *HeardList) WasRecentlyNearby(callsign string, maxHops int, within time.Duration, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	var s = h.stations[callsign]
	return s != nil && now.Sub(s.LastHeard) <= within && s.Hops <= maxHops
}

// Get is a copy of one station's entry.
func (h *HeardList) Get(callsign string) (HeardStation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var s = h.stations[callsign]
	if s == nil {
		return HeardStation{}, false //nolint:exhaustruct
	}
	return *s, true
}

// List is a copy, most recently heard first.
func (h *HeardList) List() []HeardStation {
	h.mu.Lock()
	var stations = make([]HeardStation, 0, len(h.stations))
	for _, k := range slices.Sorted(maps.Keys(h.stations)) {
		stations = append(stations, *h.stations[k])
	}
	h.mu.Unlock()

	slices.SortStableFunc(stations, func(a, b HeardStation) int {
		return b.LastHeard.Compare(a.LastHeard)
	})
	return stations
}
