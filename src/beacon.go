package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Transmit our position on a fixed schedule.
 *
 * Description:	A single fixed position beacon, as in
 *
 *			!4531.52N/07336.15W-Philadelphia APRS Test
 *
 *		The symbol table identifier sits between latitude and
 *		longitude, the symbol code after longitude.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"time"
)

// How often the TX task looks at the clock.
const BEACON_CHECK_INTERVAL = time.Second

/*-------------------------------------------------------------------
 *
 * Name:        BeaconPayload
 *
 * Purpose:     Information part of a position report without timestamp.
 *
 * Returns:	!{lat}{table}{lon}{symbol}{message}
 *
 *--------------------------------------------------------------------*/

func BeaconPayload(lat float64, lon float64, ambiguity int, icon Icon, message string) string {
	return fmt.Sprintf("!%s%c%s%c%s",
		LatitudeToStr(lat, ambiguity), icon.Table,
		LongitudeToStr(lon, ambiguity), icon.Symbol,
		message)
}

type Beaconer struct {
	radio    Radio
	stats    *Stats
	plog     *PacketLog
	interval time.Duration
	check    time.Duration

	packet *Ax25Packet
	frame  []byte // KISS encoded, ready to go.

	lastSent time.Time // Zero means never, so the first check fires.
	now      func() time.Time
}

/*-------------------------------------------------------------------
 *
 * Name:        NewBeaconer
 *
 * Purpose:     Build the beacon once from configuration.
 *
 * Description:	The position doesn't change so the frame is encoded
 *		up front.  Any problem with it shows up at startup
 *		rather than at the first transmission.
 *
 *--------------------------------------------------------------------*/

func NewBeaconer(c *GatewayConfig, radio Radio, stats *Stats, plog *PacketLog) (*Beaconer, error) {
	var lat, lon, err = c.Beacon.Position()
	if err != nil {
		return nil, err
	}

	var icon Icon
	icon, err = c.Beacon.SymbolIcon()
	if err != nil {
		return nil, err
	}

	var dest Ax25Address
	if c.Beacon.Destination != "" {
		dest, err = ParseAddress(c.Beacon.Destination)
		if err != nil {
			return nil, err
		}
	}

	var info = BeaconPayload(lat, lon, c.Beacon.Ambiguity, icon, c.Beacon.Message)

	var ax25 []byte
	ax25, err = EncodeUI(c.Identity(), dest, info)
	if err != nil {
		return nil, fmt.Errorf("beacon: %w", err)
	}

	var packet *Ax25Packet
	packet, err = Decode(ax25)
	if err != nil {
		return nil, fmt.Errorf("beacon: %w", err)
	}

	return &Beaconer{ //nolint:exhaustruct
		radio:    radio,
		stats:    stats,
		plog:     plog,
		interval: c.Beacon.Interval,
		check:    BEACON_CHECK_INTERVAL,
		packet:   packet,
		frame:    Stuff(KISS_CMD_DATA_FRAME, ax25),
		now:      time.Now,
	}, nil
}

// Frame is the KISS frame that will be written.
func (b *Beaconer) Frame() []byte {
	return b.frame
}

func (b *Beaconer) Packet() *Ax25Packet {
	return b.packet
}

/*-------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     TX task.  Transmit the beacon when it is time.
 *
 * Returns:	nil when ctx is cancelled.
 *		The write error if the radio fails.  There is nothing
 *		more this task can do without a transport.
 *
 *--------------------------------------------------------------------*/

func (b *Beaconer) Run(ctx context.Context) error {
	var l = stageLogger("tx")
	l.Info("Beacon task started", "interval", b.interval, "beacon", FormatTNC2(b.packet))

	var ticker = time.NewTicker(b.check)
	defer ticker.Stop()

	for {
		if err := b.tick(); err != nil {
			l.Error("Radio write failed, beacon task stopping", "err", err)
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (b *Beaconer) tick() error {
	var now = b.now()
	if !b.lastSent.IsZero() && now.Sub(b.lastSent) < b.interval {
		return nil
	}

	if err := b.radio.WriteFrame(b.frame); err != nil {
		return err
	}

	b.lastSent = now
	b.stats.BeaconsSent.Add(1)

	var line = FormatTNC2(b.packet)
	stageLogger("tx").Info("Beacon sent", "bytes", len(b.frame))
	monitorPrint("[tx]", line, now)
	b.plog.Write("tx", b.packet, now)

	return nil
}
