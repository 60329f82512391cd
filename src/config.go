package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Gateway configuration.
 *
 * Description:	Settings come from a YAML file, then command line
 *		options override individual items, then Validate checks
 *		the result as a whole.
 *
 *		Example:
 *
 *			mode: both
 *			callsign: N0CALL
 *			ssid: 10
 *			radio:
 *			  device: /dev/ttyACM0
 *			  baud: 115200
 *			beacon:
 *			  latitude: 45^31.52N
 *			  longitude: 73^36.15W
 *			  icon: g
 *			  message: kissgate iGate
 *			  interval: 10m
 *			aprsis:
 *			  passcode_file: ./cs_token
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	MODE_RX   Mode = "rx"   /* Receive and gate only. */
	MODE_BOTH Mode = "both" /* Also transmit position beacons. */
)

const DEFAULT_SERVER = "rotate.aprs2.net:14580"
const DEFAULT_DEVICE = "/dev/ttyACM0"
const DEFAULT_BAUD = 115200
const DEFAULT_PASSCODE_FILE = "./cs_token"
const DEFAULT_BEACON_INTERVAL = 10 * time.Minute
const MIN_BEACON_INTERVAL = 1 * time.Minute
const DEFAULT_POLL_INTERVAL = 10 * time.Millisecond
const DEFAULT_KEEPALIVE = 5 * time.Minute
const DEFAULT_RETRY = 3 * time.Second
const DEFAULT_DIAL_TIMEOUT = 15 * time.Second
const DEFAULT_DISCOVER_TIMEOUT = 5 * time.Second

// Passcode used when none could be read.  The server accepts the login
// but won't take packets from it, which shows up in the login response.
const NO_PASSCODE = "-1"

var ErrInvalidConfig = errors.New("invalid configuration")

type GatewayConfig struct {
	Mode     Mode   `yaml:"mode"`
	Callsign string `yaml:"callsign"`
	SSID     int    `yaml:"ssid"`

	Radio  RadioConfig  `yaml:"radio"`
	APRSIS APRSISConfig `yaml:"aprsis"`
	Beacon BeaconConfig `yaml:"beacon"`

	// How long the RX task sleeps when nothing was received.  Lower is
	// less latency, more CPU.  Also bounds how long shutdown takes.
	PollInterval time.Duration `yaml:"poll_interval"`

	QueueSize  int           `yaml:"queue_size"`  // 0 for unbounded.
	DedupeTime time.Duration `yaml:"dedupe_time"` // 0 to disable.

	StatusAddr      string `yaml:"status_addr"`
	PacketLog       string `yaml:"packet_log"` // Directory for daily files or a file name.
	LogLevel        string `yaml:"log_level"`
	TimestampFormat string `yaml:"timestamp_format"`
}

type RadioConfig struct {
	Device          string        `yaml:"device"`
	Baud            int           `yaml:"baud"`
	KissTCP         string        `yaml:"kiss_tcp"`
	Discover        bool          `yaml:"discover"`
	DiscoverTimeout time.Duration `yaml:"discover_timeout"`
}

type APRSISConfig struct {
	Server       string        `yaml:"server"`
	Passcode     string        `yaml:"passcode"`
	PasscodeFile string        `yaml:"passcode_file"`
	Filter       string        `yaml:"filter"`
	Keepalive    time.Duration `yaml:"keepalive"`
	Retry        time.Duration `yaml:"retry"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
}

// Position is any one of the supported forms.
type BeaconConfig struct {
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
	Grid      string `yaml:"grid"`
	UTM       string `yaml:"utm"`
	MGRS      string `yaml:"mgrs"`
	Ambiguity int    `yaml:"ambiguity"`

	Icon   string `yaml:"icon"`
	Table  string `yaml:"table"`
	Symbol string `yaml:"symbol"`

	Message     string        `yaml:"message"`
	Interval    time.Duration `yaml:"interval"`
	Destination string        `yaml:"destination"`
}

type Icon struct {
	Name   string
	Table  byte
	Symbol byte
}

// Selection key to symbol table and code.
var Icons = map[string]Icon{
	"h": {"Home", '/', '-'},
	"b": {"Bike", '/', '<'},
	"c": {"Car", '/', '>'},
	"j": {"Jeep", '/', 'j'},
	"s": {"Ship", '/', 's'},
	"p": {"Person", '/', '['},
	"g": {"Gateway", '/', '&'},
}

const DEFAULT_ICON = "h"

func DefaultConfig() *GatewayConfig {
	return &GatewayConfig{ //nolint:exhaustruct
		Mode: MODE_RX,
		Radio: RadioConfig{ //nolint:exhaustruct
			Device:          DEFAULT_DEVICE,
			Baud:            DEFAULT_BAUD,
			DiscoverTimeout: DEFAULT_DISCOVER_TIMEOUT,
		},
		APRSIS: APRSISConfig{ //nolint:exhaustruct
			Server:       DEFAULT_SERVER,
			PasscodeFile: DEFAULT_PASSCODE_FILE,
			Keepalive:    DEFAULT_KEEPALIVE,
			Retry:        DEFAULT_RETRY,
			DialTimeout:  DEFAULT_DIAL_TIMEOUT,
		},
		Beacon: BeaconConfig{ //nolint:exhaustruct
			Icon:     DEFAULT_ICON,
			Interval: DEFAULT_BEACON_INTERVAL,
		},
		PollInterval: DEFAULT_POLL_INTERVAL,
	}
}

/*------------------------------------------------------------------
 *
 * Name:        LoadConfig
 *
 * Purpose:     Read configuration file.
 *
 * Inputs:	path	- YAML file.  Empty string for defaults only.
 *
 * Description:	Starts from DefaultConfig so the file only needs to
 *		mention what is different.  Unknown keys are an error,
 *		they are almost always a typo.
 *
 *----------------------------------------------------------------*/

func LoadConfig(path string) (*GatewayConfig, error) {
	var c = DefaultConfig()
	if path == "" {
		return c, nil
	}

	var fp, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	defer fp.Close()

	if err := c.decode(fp); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return c, nil
}

func (c *GatewayConfig) decode(r io.Reader) error {
	var dec = yaml.NewDecoder(r)
	dec.KnownFields(true)

	var err = dec.Decode(c)
	if errors.Is(err, io.EOF) { // Empty file.
		return nil
	}
	return err
}

// Identity is our own address, as used for beacons and the self filter.
func (c *GatewayConfig) Identity() Ax25Address {
	return Ax25Address{ //nolint:exhaustruct
		Callsign: strings.ToUpper(c.Callsign),
		SSID:     uint8(c.SSID), //nolint:gosec
	}
}

// Login is the APRS-IS user name, always with SSID like the self filter.
func (c *GatewayConfig) Login() string {
	return c.Identity().WithSSID()
}

/*------------------------------------------------------------------
 *
 * Name:        Validate
 *
 * Purpose:     Check the configuration as a whole after all overrides.
 *
 * Returns:	nil or an error wrapping ErrInvalidConfig listing every
 *		problem found.
 *
 *----------------------------------------------------------------*/

func (c *GatewayConfig) Validate() error {
	var errs []error

	var fail = func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	c.Mode = Mode(strings.ToLower(string(c.Mode)))
	if c.Mode != MODE_RX && c.Mode != MODE_BOTH {
		fail("mode %q must be %q or %q", c.Mode, MODE_RX, MODE_BOTH)
	}

	c.Callsign = strings.ToUpper(strings.TrimSpace(c.Callsign))
	if c.Callsign == "" {
		fail("callsign is required")
	} else if err := checkCallsign(c.Callsign); err != nil {
		errs = append(errs, fmt.Errorf("%w: callsign: %w", ErrInvalidConfig, err))
	}
	if c.SSID < 0 || c.SSID > AX25_MAX_SSID {
		fail("ssid %d must be 0 to %d", c.SSID, AX25_MAX_SSID)
	}

	if c.Radio.Device == "" && c.Radio.KissTCP == "" && !c.Radio.Discover {
		fail("radio needs a device, a kiss_tcp address or discover")
	}
	if c.PollInterval <= 0 {
		fail("poll_interval must be positive")
	}
	if c.QueueSize < 0 {
		fail("queue_size must not be negative")
	}
	if c.DedupeTime < 0 {
		fail("dedupe_time must not be negative")
	}
	if c.APRSIS.Server == "" {
		fail("aprsis server is required")
	}
	if c.APRSIS.Retry <= 0 {
		fail("aprsis retry must be positive")
	}
	if c.APRSIS.Keepalive <= 0 {
		fail("aprsis keepalive must be positive")
	}

	if c.Mode == MODE_BOTH {
		if c.Beacon.Interval < MIN_BEACON_INTERVAL {
			fail("beacon interval %s is less than %s", c.Beacon.Interval, MIN_BEACON_INTERVAL)
		}
		if _, _, err := c.Beacon.Position(); err != nil {
			errs = append(errs, fmt.Errorf("%w: beacon: %w", ErrInvalidConfig, err))
		}
		if _, err := c.Beacon.SymbolIcon(); err != nil {
			errs = append(errs, fmt.Errorf("%w: beacon: %w", ErrInvalidConfig, err))
		}
		if c.Beacon.Ambiguity < 0 || c.Beacon.Ambiguity > 4 {
			fail("beacon ambiguity %d must be 0 to 4", c.Beacon.Ambiguity)
		}
		if c.Beacon.Destination != "" {
			if _, err := ParseAddress(c.Beacon.Destination); err != nil {
				errs = append(errs, fmt.Errorf("%w: beacon destination: %w", ErrInvalidConfig, err))
			}
		}
	}

	return errors.Join(errs...)
}

/*------------------------------------------------------------------
 *
 * Name:        Position
 *
 * Purpose:     Beacon position in decimal degrees.
 *
 * Description:	Exactly one form must be given: latitude and longitude,
 *		grid square, UTM or MGRS.
 *
 *----------------------------------------------------------------*/

func (b *BeaconConfig) Position() (float64, float64, error) {
	var forms = 0
	for _, s := range []string{b.Latitude + b.Longitude, b.Grid, b.UTM, b.MGRS} {
		if s != "" {
			forms++
		}
	}
	if forms == 0 {
		return 0, 0, fmt.Errorf("%w: no position given", ErrInvalidPosition)
	}
	if forms > 1 {
		return 0, 0, fmt.Errorf("%w: only one of latitude/longitude, grid, utm or mgrs may be given", ErrInvalidPosition)
	}

	switch {
	case b.Grid != "":
		return LatLongFromGridSquare(b.Grid)
	case b.UTM != "":
		return LatLongFromUTM(b.UTM)
	case b.MGRS != "":
		return LatLongFromMGRS(b.MGRS)
	}

	var lat, err = ParseLatLong(b.Latitude, LAT)
	if err != nil {
		return 0, 0, err
	}
	var lon float64
	lon, err = ParseLatLong(b.Longitude, LON)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

// SymbolIcon is the explicit table and symbol if both given, else the
// icon selection.
func (b *BeaconConfig) SymbolIcon() (Icon, error) {
	if b.Table != "" || b.Symbol != "" {
		if len(b.Table) != 1 || len(b.Symbol) != 1 {
			return Icon{}, fmt.Errorf("%w: table %q and symbol %q must each be one character", ErrInvalidConfig, b.Table, b.Symbol) //nolint:exhaustruct
		}
		return Icon{Name: "Custom", Table: b.Table[0], Symbol: b.Symbol[0]}, nil
	}

	var key = strings.ToLower(b.Icon)
	if key == "" {
		key = DEFAULT_ICON
	}
	var icon, ok = Icons[key]
	if !ok {
		return Icon{}, fmt.Errorf("%w: unknown icon %q", ErrInvalidConfig, b.Icon) //nolint:exhaustruct
	}
	return icon, nil
}

/*------------------------------------------------------------------
 *
 * Name:        ReadPasscode
 *
 * Purpose:     Get the APRS-IS passcode from a single line file.
 *
 * Returns:	First line, trimmed.  NO_PASSCODE if the file can't be
 *		read.  That is not fatal, the server will just refuse
 *		our packets and the login response says so.
 *
 *----------------------------------------------------------------*/

func ReadPasscode(path string) string {
	var fp, err = os.Open(path)
	if err != nil {
		stageLogger("config").Warn("Could not read passcode, continuing without one", "file", path, "err", err)
		return NO_PASSCODE
	}
	defer fp.Close()

	var sc = bufio.NewScanner(fp)
	if !sc.Scan() {
		stageLogger("config").Warn("Passcode file is empty, continuing without one", "file", path)
		return NO_PASSCODE
	}

	var passcode = strings.TrimSpace(sc.Text())
	if passcode == "" {
		return NO_PASSCODE
	}
	return passcode
}

// Passcode from the configuration itself, else from the file.
func (c *GatewayConfig) ResolvePasscode() string {
	if c.APRSIS.Passcode != "" {
		return c.APRSIS.Passcode
	}
	return ReadPasscode(c.APRSIS.PasscodeFile)
}
