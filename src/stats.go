package kissgate

import "sync/atomic"

// Stats are pipeline counters, updated by the tasks and read by the
// status endpoint and the final summary.
type Stats struct {
	Frames        atomic.Uint64 // KISS frames found by the framer.
	NoiseBytes    atomic.Uint64
	NonData       atomic.Uint64 // Other commands or ports, ignored.
	DecodeErrors  atomic.Uint64
	SelfFiltered  atomic.Uint64 // Our own transmissions heard back.
	PolicyDropped atomic.Uint64 // Not allowed to go to APRS-IS.
	Duplicates    atomic.Uint64
	Queued        atomic.Uint64
	QueueDropped  atomic.Uint64 // Queue full.
	BeaconsSent   atomic.Uint64

	Connects        atomic.Uint64
	ConnectFailures atomic.Uint64
	Uplinked        atomic.Uint64
	UplinkBytes     atomic.Uint64
	UplinkLost      atomic.Uint64 // Taken from the queue but not sent.
	Keepalives      atomic.Uint64
}

type StatsSnapshot struct {
	Frames        uint64 `json:"frames"`
	NoiseBytes    uint64 `json:"noise_bytes"`
	NonData       uint64 `json:"non_data_frames"`
	DecodeErrors  uint64 `json:"decode_errors"`
	SelfFiltered  uint64 `json:"self_filtered"`
	PolicyDropped uint64 `json:"policy_dropped"`
	Duplicates    uint64 `json:"duplicates"`
	Queued        uint64 `json:"queued"`
	QueueDropped  uint64 `json:"queue_dropped"`
	BeaconsSent   uint64 `json:"beacons_sent"`

	Connects        uint64 `json:"connects"`
	ConnectFailures uint64 `json:"connect_failures"`
	Uplinked        uint64 `json:"uplinked"`
	UplinkBytes     uint64 `json:"uplink_bytes"`
	UplinkLost      uint64 `json:"uplink_lost"`
	Keepalives      uint64 `json:"keepalives"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Frames:        s.Frames.Load(),
		NoiseBytes:    s.NoiseBytes.Load(),
		NonData:       s.NonData.Load(),
		DecodeErrors:  s.DecodeErrors.Load(),
		SelfFiltered:  s.SelfFiltered.Load(),
		PolicyDropped: s.PolicyDropped.Load(),
		Duplicates:    s.Duplicates.Load(),
		Queued:        s.Queued.Load(),
		QueueDropped:  s.QueueDropped.Load(),
		BeaconsSent:   s.BeaconsSent.Load(),

		Connects:        s.Connects.Load(),
		ConnectFailures: s.ConnectFailures.Load(),
		Uplinked:        s.Uplinked.Load(),
		UplinkBytes:     s.UplinkBytes.Load(),
		UplinkLost:      s.UplinkLost.Load(),
		Keepalives:      s.Keepalives.Load(),
	}
}
