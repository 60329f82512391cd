package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Move packets from the radio to APRS-IS, and our
 *		beacon from a timer to the radio.
 *
 * Description:	Independent tasks, all stopped by the one context:
 *
 *		RX	- Read whatever the TNC has sent, find the KISS
 *			  frames, decode them, and queue the ones that
 *			  may be gated.
 *
 *		TX	- Position beacon, only in "both" mode.
 *
 *		Uplink	- Take lines from the queue and send them to
 *			  the APRS-IS server, reconnecting as needed.
 *
 *		Keepalive - Comment line to the server now and then.
 *
 *		Status	- Optional HTTP status server.
 *
 *		Per packet:
 *
 *		  raw --> destuffed --> decoded --+--> self, dropped
 *		                                  |
 *		                                  +--> queued for uplink
 *
 *		A packet with our own callsign and SSID as source is
 *		our own beacon heard back through a digipeater; there
 *		is no point sending it to the server again.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

type Gateway struct {
	cfg      *GatewayConfig
	identity Ax25Address

	radio  Radio
	stats  *Stats
	queue  *UplinkQueue
	framer *Framer
	dedupe *Dedupe
	plog   *PacketLog
	heard  *HeardList

	igate  *IGateClient
	beacon *Beaconer
	status *StatusServer

	// Ready is called once all tasks have been started.
	Ready func()

	now func() time.Time
}

/*-------------------------------------------------------------------
 *
 * Name:        NewGateway
 *
 * Inputs:	cfg	 - Validated configuration.
 *
 *		radio	 - Transport to the TNC.  It is wrapped so reads
 *			   and writes never overlap.
 *
 *		passcode - For the APRS-IS login.
 *
 *		plog	 - Packet log, nil for none.
 *
 *--------------------------------------------------------------------*/

func NewGateway(cfg *GatewayConfig, radio Radio, passcode string, plog *PacketLog) (*Gateway, error) {
	var locked = NewLockedRadio(radio)
	var stats = new(Stats)
	var queue = NewUplinkQueue(cfg.QueueSize)

	var g = &Gateway{ //nolint:exhaustruct
		cfg:      cfg,
		identity: cfg.Identity(),
		radio:    locked,
		stats:    stats,
		queue:    queue,
		framer:   NewFramer(),
		dedupe:   NewDedupe(cfg.DedupeTime),
		plog:     plog,
		heard:    NewHeardList(),
		igate:    NewIGateClient(NewIGateConfig(cfg, passcode), queue, stats),
		now:      time.Now,
	}

	if cfg.Mode == MODE_BOTH {
		var b, err = NewBeaconer(cfg, locked, stats, plog)
		if err != nil {
			return nil, err
		}
		g.beacon = b
	}

	if cfg.StatusAddr != "" {
		g.status = NewStatusServer(cfg.StatusAddr, stats, queue, g.igate, g.heard)
	}

	return g, nil
}

func (g *Gateway) Stats() *Stats {
	return g.stats
}

func (g *Gateway) Queue() *UplinkQueue {
	return g.queue
}

func (g *Gateway) Heard() *HeardList {
	return g.heard
}

/*-------------------------------------------------------------------
 *
 * Name:        HandleBytes
 *
 * Purpose:     Feed newly received bytes through the framer and
 *		process every complete frame.
 *
 *--------------------------------------------------------------------*/

func (g *Gateway) HandleBytes(data []byte) {
	var before = g.framer.Discarded()

	for raw := range g.framer.Feed(data) {
		g.HandleFrame(raw)
	}

	if noise := g.framer.Discarded() - before; noise > 0 {
		g.stats.NoiseBytes.Add(uint64(noise))
		stageLogger("framer").Debug("Discarded bytes while looking for FEND", "count", noise)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        HandleFrame
 *
 * Purpose:     Process one frame found by the framer.
 *
 * Description:	Nothing here is fatal.  Anything wrong with a frame
 *		is logged and the frame dropped.
 *
 *--------------------------------------------------------------------*/

func (g *Gateway) HandleFrame(raw RawFrame) {
	var l = stageLogger("rx")
	g.stats.Frames.Add(1)

	var kf, err = Destuff(raw)
	if err != nil {
		g.stats.DecodeErrors.Add(1)
		l.Debug("Bad KISS frame", "err", err, "raw", hexDump(raw))
		return
	}

	if !kf.IsData() {
		g.stats.NonData.Add(1)
		l.Debug("Ignoring KISS frame", "kind", kf.String())
		return
	}

	var p *Ax25Packet
	p, err = Decode(kf.Payload)
	if err != nil {
		g.stats.DecodeErrors.Add(1)
		l.Warn("Could not decode frame", "err", err, "raw", hexDump(kf.Payload))
		return
	}

	var now = g.now()
	monitorPrint("[rx]", FormatTNC2(p), now)
	g.plog.Write("rx", p, now)

	if p.Source.Same(g.identity) {
		g.stats.SelfFiltered.Add(1)
		l.Info("Packet duplicate of our own transmission", "src", p.Source.WithSSID())
		return
	}

	g.heard.Save(p, now)

	var line string
	line, err = IGateLine(p)
	if err != nil {
		g.stats.PolicyDropped.Add(1)
		l.Debug("Not gating", "src", p.Source.String(), "reason", err)
		return
	}

	if !g.dedupe.Allow(p, now) {
		g.stats.Duplicates.Add(1)
		l.Debug("Drop duplicate of same packet seen recently", "src", p.Source.String())
		return
	}

	if !g.queue.Append(line) {
		g.stats.QueueDropped.Add(1)
		l.Warn("Uplink queue full, packet dropped", "src", p.Source.String())
		return
	}

	g.dedupe.Remember(p, now)
	g.stats.Queued.Add(1)
	l.Info("RX", "src", p.Source.String(), "dst", p.Destination.String())
}

/*-------------------------------------------------------------------
 *
 * Name:        RunRX
 *
 * Purpose:     RX task.
 *
 * Description:	Poll the radio.  When nothing has arrived, sleep for
 *		the poll interval which is also the longest it takes
 *		to notice shutdown.
 *
 * Returns:	nil when ctx is cancelled.
 *		The transport error if the radio fails; this task can't
 *		do anything more without it.
 *
 *--------------------------------------------------------------------*/

func (g *Gateway) RunRX(ctx context.Context) error {
	var l = stageLogger("rx")
	l.Info("RX task started", "poll_interval", g.cfg.PollInterval)

	for ctx.Err() == nil {
		var data, err = g.radio.ReadAvailable()
		if err != nil {
			l.Error("Radio read failed, RX task stopping", "err", err)
			return fmt.Errorf("rx: %w", err)
		}

		if len(data) == 0 {
			sleepCtx(ctx, g.cfg.PollInterval)
			continue
		}

		g.HandleBytes(data)
	}

	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     Start all tasks and wait for them.
 *
 * Returns:	nil after a clean shutdown, otherwise the first fatal
 *		task error.  A failing radio ends RX (and TX); the whole
 *		group is then cancelled so the process can exit and be
 *		restarted by whatever supervises it.
 *
 *--------------------------------------------------------------------*/

func (g *Gateway) Run(ctx context.Context) error {
	var grp, gctx = errgroup.WithContext(ctx)

	grp.Go(func() error { return g.RunRX(gctx) })
	grp.Go(func() error { return g.igate.Run(gctx) })
	grp.Go(func() error { return g.igate.RunKeepalive(gctx) })

	if g.beacon != nil {
		grp.Go(func() error { return g.beacon.Run(gctx) })
	}

	if g.status != nil {
		grp.Go(func() error {
			if err := g.status.Run(gctx); err != nil {
				stageLogger("status").Error("Status server failed", "err", err)
			}
			return nil
		})
	}

	stageLogger("gateway").Info("System running", "mode", g.cfg.Mode, "identity", g.identity.WithSSID())
	if g.Ready != nil {
		g.Ready()
	}

	var err = grp.Wait()

	g.radio.Close() //nolint:errcheck
	g.plog.Close()

	var s = g.stats.Snapshot()
	stageLogger("gateway").Info("Stopped",
		"frames", s.Frames, "queued", s.Queued, "uplinked", s.Uplinked,
		"self_filtered", s.SelfFiltered, "decode_errors", s.DecodeErrors, "beacons", s.BeaconsSent,
		"stations_heard", len(g.heard.List()))

	return err
}
