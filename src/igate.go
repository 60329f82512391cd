package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	IGate client.
 *
 * Description:	Establish connection with an APRS-IS server and
 *		send it everything heard over the radio that it is
 *		allowed to have.
 *
 *		Protocol, from http://www.aprs-is.net/Connecting.aspx
 *
 *			user CALL-SSID pass PASSCODE vers SOFTWARE VERSION [filter ...]
 *
 *		then one TNC2 format line per packet.  Every line, in
 *		both directions, ends with CR LF.  Lines starting with
 *		"#" are comments; the server sends them now and then and
 *		we send one as a keepalive.
 *
 *		The connection is not kept in a separate thread with a
 *		state machine.  Whoever needs it connects if it isn't,
 *		and whoever notices a failure drops it.  A packet that
 *		was being written when the connection failed is lost.
 *		The server would reject it as a duplicate anyhow if it
 *		had got through.
 *
 * References:	http://www.aprs-is.net/IGateDetails.aspx
 *		http://www.aprs-is.net/q.aspx
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

const IGATE_MAX_MSG = 512 /* "All 'packets' sent to APRS-IS must be in the TNC2 format terminated */
/* by a carriage return, line feed sequence. No line may exceed 512 bytes */
/* including the CR/LF sequence." */

const KEEPALIVE_LINE = "# " + SOFTWARE_NAME + " keepalive"

const IGATE_WRITE_TIMEOUT = 30 * time.Second

var (
	ErrNoGatePath   = errors.New("path does not allow gating")
	ErrGenericQuery = errors.New("generic query")
	ErrEmptyInfo    = errors.New("information part is empty")
	ErrLineTooLong  = errors.New("line too long for APRS-IS")
	ErrNotConnected = errors.New("not connected to APRS-IS")
)

/*-------------------------------------------------------------------
 *
 * Name:        IGateLine
 *
 * Purpose:     Decide whether a received packet may go to APRS-IS
 *		and produce the line to send.
 *
 * Returns:	TNC2 line without CR LF, or one of the errors above as
 *		the reason for not gating it.
 *
 * Description:	- Do not relay packets with TCPIP, TCPXX, RFONLY, or
 *		  NOGATE in the via path.
 *		- Do not relay generic query.
 *		- Cut the information part at the first CR or LF.
 *		  This is required because CR/LF is used as record
 *		  separator when sending to server.  Do NOT trim
 *		  trailing spaces.
 *		- Someone around here occasionally sends a packet with
 *		  no information part.
 *
 *--------------------------------------------------------------------*/

func IGateLine(p *Ax25Packet) (string, error) {
	for _, d := range p.Digipeaters {
		if d.SSID != 0 {
			continue
		}
		switch d.Callsign {
		case "TCPIP", "TCPXX", "RFONLY", "NOGATE":
			return "", fmt.Errorf("%w: %s in path", ErrNoGatePath, d.Callsign)
		}
	}

	var gated = *p
	if gated.PID == AX25_PID_NO_LAYER_3 {
		if i := strings.IndexAny(string(gated.Payload), "\r\n"); i >= 0 {
			gated.Payload = gated.Payload[:i]
		}
		if len(gated.Payload) > 0 && gated.Payload[0] == '?' {
			return "", ErrGenericQuery
		}
	}

	if len(gated.Payload) == 0 {
		return "", ErrEmptyInfo
	}

	var line = FormatTNC2(&gated)
	if len(line)+2 > IGATE_MAX_MSG {
		return "", fmt.Errorf("%w: %d bytes", ErrLineTooLong, len(line))
	}

	return line, nil
}

type IGateConfig struct {
	Server      string // host:port
	Login       string // CALL-SSID
	Passcode    string
	Filter      string // Optional server side filter.
	Keepalive   time.Duration
	Retry       time.Duration
	DialTimeout time.Duration
}

func NewIGateConfig(c *GatewayConfig, passcode string) IGateConfig {
	return IGateConfig{
		Server:      c.APRSIS.Server,
		Login:       c.Login(),
		Passcode:    passcode,
		Filter:      c.APRSIS.Filter,
		Keepalive:   c.APRSIS.Keepalive,
		Retry:       c.APRSIS.Retry,
		DialTimeout: c.APRSIS.DialTimeout,
	}
}

// LoginLine is the first thing sent after connecting.
// Software name and version must not contain spaces.
func (c IGateConfig) LoginLine() string {
	var line = fmt.Sprintf("user %s pass %s vers %s %s", c.Login, c.Passcode, SOFTWARE_NAME, Version())
	if c.Filter != "" {
		line += " filter " + c.Filter
	}
	return line
}

// IGateClient owns the one connection to the APRS-IS server.
type IGateClient struct {
	cfg   IGateConfig
	queue *UplinkQueue
	stats *Stats

	mu   sync.Mutex // Guards conn.  Never held across network I/O.
	conn net.Conn

	writeMu sync.Mutex // One line at a time, packets and keepalives.

	dial func(ctx context.Context, network, addr string) (net.Conn, error)
}

func NewIGateClient(cfg IGateConfig, queue *UplinkQueue, stats *Stats) *IGateClient {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DEFAULT_DIAL_TIMEOUT
	}
	if cfg.Retry <= 0 {
		cfg.Retry = DEFAULT_RETRY
	}
	if cfg.Keepalive <= 0 {
		cfg.Keepalive = DEFAULT_KEEPALIVE
	}

	var d = net.Dialer{Timeout: cfg.DialTimeout} //nolint:exhaustruct

	return &IGateClient{ //nolint:exhaustruct
		cfg:   cfg,
		queue: queue,
		stats: stats,
		dial:  d.DialContext,
	}
}

// Connected is true between a successful login and the next failure.
func (c *IGateClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

/*-------------------------------------------------------------------
 *
 * Name:        connect
 *
 * Purpose:     Connect to the server and log in.
 *
 * Description:	The server's answer to the login is one line, logged
 *		so a bad passcode is easy to spot ("unverified").
 *		After that a reader goroutine keeps the receive side
 *		drained and notices when the server goes away.
 *
 *--------------------------------------------------------------------*/

func (c *IGateClient) connect(ctx context.Context) error {
	var l = stageLogger("uplink")

	var conn, err = c.dial(ctx, "tcp", c.cfg.Server)
	if err != nil {
		c.stats.ConnectFailures.Add(1)
		return fmt.Errorf("connect to IGate server %s: %w", c.cfg.Server, err)
	}

	// Not yet c.conn, so nothing else would close it at shutdown.
	var stopHandshake = context.AfterFunc(ctx, func() { conn.Close() }) //nolint:errcheck
	defer stopHandshake()

	var login = c.cfg.LoginLine()
	conn.SetDeadline(time.Now().Add(c.cfg.DialTimeout)) //nolint:errcheck

	if _, err = conn.Write([]byte(login + "\r\n")); err != nil {
		conn.Close() //nolint:errcheck
		c.stats.ConnectFailures.Add(1)
		return fmt.Errorf("login to IGate server %s: %w", c.cfg.Server, err)
	}

	var rd = bufio.NewReader(conn)
	var resp string
	resp, err = rd.ReadString('\n')
	if err != nil {
		conn.Close() //nolint:errcheck
		c.stats.ConnectFailures.Add(1)
		return fmt.Errorf("no login response from IGate server %s: %w", c.cfg.Server, err)
	}
	conn.SetDeadline(time.Time{}) //nolint:errcheck

	if !stopHandshake() {
		return fmt.Errorf("login to IGate server %s: %w", c.cfg.Server, ctx.Err())
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.stats.Connects.Add(1)
	l.Info("Now connected to IGate server", "server", c.cfg.Server, "login", c.cfg.Login)
	l.Info("Login response", "line", strings.TrimRight(resp, "\r\n"))

	go c.readFromServer(conn, rd)

	return nil
}

// Lines from the server are only logged.  This is not a bidirectional
// gateway.  A read error means the connection is gone.
func (c *IGateClient) readFromServer(conn net.Conn, rd *bufio.Reader) {
	var l = stageLogger("uplink")
	for {
		var line, err = rd.ReadString('\n')
		if err != nil {
			l.Debug("Error reading from IGate server, closing connection", "err", err)
			c.drop(conn)
			return
		}
		l.Debug("[ig>rx]", "line", strings.TrimRight(line, "\r\n"))
	}
}

// drop closes conn if it is still the current connection.
func (c *IGateClient) drop(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn && conn != nil {
		conn.Close() //nolint:errcheck
		c.conn = nil
	}
}

func (c *IGateClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close() //nolint:errcheck
		c.conn = nil
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        sendLine
 *
 * Purpose:     Send something to the IGate server.
 *		This one function is used for packets and keepalives.
 *
 * Inputs:	line	- We will add CR/LF here.
 *
 * Description:	Disconnect from server if any error.
 *
 *--------------------------------------------------------------------*/

func (c *IGateClient) sendLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	var conn = c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	// close() may close conn underneath us; the write then fails at once.
	var msg = line + "\r\n"
	conn.SetWriteDeadline(time.Now().Add(IGATE_WRITE_TIMEOUT)) //nolint:errcheck
	var _, err = conn.Write([]byte(msg))
	if err != nil {
		c.drop(conn)
		return fmt.Errorf("error sending to IGate server: %w", err)
	}

	c.stats.UplinkBytes.Add(uint64(len(msg)))
	return nil
}

// ensureConnected retries forever with a fixed delay until connected
// or ctx is cancelled.
func (c *IGateClient) ensureConnected(ctx context.Context) error {
	for !c.Connected() {
		var err = c.connect(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stageLogger("uplink").Warn("APRS-IS connection failed, will retry", "err", err, "retry", c.cfg.Retry)
		if !sleepCtx(ctx, c.cfg.Retry) {
			return ctx.Err()
		}
	}
	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        Run
 *
 * Purpose:     Uplink task.  Take lines from the queue and send them.
 *
 * Returns:	nil when ctx is cancelled.  Connection problems are
 *		never fatal.
 *
 *--------------------------------------------------------------------*/

func (c *IGateClient) Run(ctx context.Context) error {
	var l = stageLogger("uplink")

	// Abandon any blocked write at shutdown.
	var stop = context.AfterFunc(ctx, c.close)
	defer stop()
	defer c.close()

	if c.ensureConnected(ctx) != nil {
		return nil
	}

	for {
		var line, err = c.queue.Wait(ctx)
		if err != nil {
			return nil
		}

		if c.ensureConnected(ctx) != nil {
			c.stats.UplinkLost.Add(1)
			return nil
		}

		if err := c.sendLine(line); err != nil {
			c.stats.UplinkLost.Add(1)
			l.Warn("Packet lost", "err", err, "line", line)
			continue
		}

		c.stats.Uplinked.Add(1)
		l.Info("[rx>ig]", "line", line)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        RunKeepalive
 *
 * Purpose:     Send a comment line periodically, only while connected,
 *		so the server doesn't drop an idle connection.
 *
 * Description:	A failure just drops the connection.  The uplink task
 *		reconnects before the next packet.
 *
 *--------------------------------------------------------------------*/

func (c *IGateClient) RunKeepalive(ctx context.Context) error {
	var ticker = time.NewTicker(c.cfg.Keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if !c.Connected() {
			continue
		}
		if err := c.sendLine(KEEPALIVE_LINE); err != nil {
			stageLogger("uplink").Debug("Keepalive failed", "err", err)
			continue
		}
		c.stats.Keepalives.Add(1)
	}
}

// sleepCtx is false if ctx was cancelled before d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	var t = time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
