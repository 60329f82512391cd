package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Avoid gating the same packet twice in a short time.
 *
 * Description:	The same packet is often heard several times, directly
 *		and then through one or more digipeaters.  The APRS-IS
 *		servers drop duplicates (ignoring the via path) within
 *		30 seconds anyhow, so there is no harm in sending them,
 *		and sending everything allows some network analysis.
 *
 *		The check is therefore off by default.  When enabled,
 *		only a checksum is kept for each packet.  There is a
 *		1 / 65536 chance of a false positive match which is good
 *		enough for this application.
 *
 *------------------------------------------------------------------*/

import (
	"strings"
	"time"
)

const RX2IG_HISTORY_MAX = 30 /* Remember the last 30 sent to IGate server. */

type dedupeEntry struct {
	timeStamp time.Time
	checksum  uint16
}

// Dedupe belongs to the RX task and is not safe for concurrent use.
type Dedupe struct {
	ttl        time.Duration // 0 disables.
	history    [RX2IG_HISTORY_MAX]dedupeEntry
	insertNext int
}

func NewDedupe(ttl time.Duration) *Dedupe {
	return &Dedupe{ttl: ttl} //nolint:exhaustruct
}

/*------------------------------------------------------------------------------
 *
 * Name:	DedupeCRC
 *
 * Purpose:	Checksum of the fields that identify a packet.
 *
 * Description:	Source, destination and information part.  The
 *		digipeater path is left out because that is what differs
 *		between copies.  Trailing CR, LF and space are removed
 *		first because some stations add them and some digipeaters
 *		strip them.
 *
 *------------------------------------------------------------------------------*/

func DedupeCRC(p *Ax25Packet) uint16 {
	var info = strings.TrimRight(string(p.Payload), "\r\n ")

	var sb strings.Builder
	sb.WriteString(p.Source.WithSSID())
	sb.WriteString(p.Destination.WithSSID())
	sb.WriteString(info)

	return FCSCalc([]byte(sb.String()))
}

// Remember records a packet that was gated.
func (d *Dedupe) Remember(p *Ax25Packet, now time.Time) {
	// No need to save the information if we are not doing duplicate checking.
	if d.ttl == 0 {
		return
	}

	d.history[d.insertNext] = dedupeEntry{timeStamp: now, checksum: DedupeCRC(p)}

	d.insertNext++
	if d.insertNext >= RX2IG_HISTORY_MAX {
		d.insertNext = 0
	}
}

// Allow is false if the same packet was gated within the time window.
func (d *Dedupe) Allow(p *Ax25Packet, now time.Time) bool {
	if d.ttl == 0 {
		return true
	}

	var crc = DedupeCRC(p)
	var oldest = now.Add(-d.ttl)

	for _, h := range d.history {
		if !h.timeStamp.IsZero() && h.checksum == crc && !h.timeStamp.Before(oldest) {
			return false
		}
	}

	return true
}
