package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the KISS to APRS-IS gateway.
 *
 * Description:	Options on the command line override those from the
 *		configuration file, which override the built in defaults.
 *
 *		Typical use:
 *
 *		kissgate --callsign N0CALL --ssid 10 -p /dev/ttyACM0
 *
 *		kissgate -c /etc/kissgate.yaml -m both
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

// ErrHelpShown means usage or version was printed and there is nothing to run.
var ErrHelpShown = errors.New("help shown")

/*-------------------------------------------------------------------
 *
 * Name:        ParseArgs
 *
 * Purpose:     Build the configuration from file and options.
 *
 * Inputs:	args	- Command line, without the program name.
 *
 *		stdout	- Where --help and --version go.
 *
 * Returns:	Validated configuration, ErrHelpShown, or the reason
 *		it can't be used.
 *
 *--------------------------------------------------------------------*/

func ParseArgs(args []string, stdout io.Writer) (*GatewayConfig, error) {
	var flags = pflag.NewFlagSet("kissgate", pflag.ContinueOnError)
	flags.SetOutput(stdout)

	var configFile = flags.StringP("config-file", "c", "", "Read configuration from this YAML file.")
	var mode = flags.StringP("mode", "m", "", "rx = receive only, both = receive and beacon.")
	var callsign = flags.String("callsign", "", "Our callsign, without SSID.")
	var ssid = flags.Int("ssid", 0, "Our SSID, 0 to 15.")
	var device = flags.StringP("port", "p", "", "Serial port of the TNC.")
	var baud = flags.IntP("baud", "b", 0, "Serial port speed.  0 leaves it as it is.")
	var kissTCP = flags.String("kiss-tcp", "", "host:port of a KISS TCP TNC, instead of a serial port.")
	var discover = flags.Bool("discover", false, "Find a KISS TCP TNC with DNS-SD.")
	var server = flags.String("server", "", "APRS-IS server host:port.")
	var passcodeFile = flags.String("passcode-file", "", "File holding the APRS-IS passcode.")
	var filter = flags.String("filter", "", "APRS-IS server side filter.")
	var pollInterval = flags.Duration("poll-interval", 0, "How long to sleep when the TNC had nothing for us.")
	var logLevel = flags.StringP("debug", "d", "", "Log level: debug, info, warn, error.")
	var timestampFormat = flags.StringP("timestamp-format", "T", "", "Precede received and sent packets with a time stamp in strftime format.")
	var statusAddr = flags.String("status-addr", "", "Listen address for the HTTP status server, e.g. :8073.")
	var packetLog = flags.StringP("packet-log", "l", "", "Packet log file, or directory for daily files.")
	var version = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(stdout, "kissgate - KISS TNC to APRS-IS gateway.\n\n")
		fmt.Fprintf(stdout, "Usage: kissgate [options]\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if *help {
		flags.Usage()
		return nil, ErrHelpShown
	}

	if *version {
		PrintVersion(stdout, false)
		return nil, ErrHelpShown
	}

	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", flags.Arg(0))
	}

	var c, err = LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}

	if flags.Changed("mode") {
		c.Mode = Mode(*mode)
	}
	if flags.Changed("callsign") {
		c.Callsign = *callsign
	}
	if flags.Changed("ssid") {
		c.SSID = *ssid
	}
	if flags.Changed("port") {
		c.Radio.Device = *device
	}
	if flags.Changed("baud") {
		c.Radio.Baud = *baud
	}
	if flags.Changed("kiss-tcp") {
		c.Radio.KissTCP = *kissTCP
	}
	if flags.Changed("discover") {
		c.Radio.Discover = *discover
	}
	if flags.Changed("server") {
		c.APRSIS.Server = *server
	}
	if flags.Changed("passcode-file") {
		c.APRSIS.PasscodeFile = *passcodeFile
	}
	if flags.Changed("filter") {
		c.APRSIS.Filter = *filter
	}
	if flags.Changed("poll-interval") {
		c.PollInterval = *pollInterval
	}
	if flags.Changed("debug") {
		c.LogLevel = *logLevel
	}
	if flags.Changed("timestamp-format") {
		c.TimestampFormat = *timestampFormat
	}
	if flags.Changed("status-addr") {
		c.StatusAddr = *statusAddr
	}
	if flags.Changed("packet-log") {
		c.PacketLog = *packetLog
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

/*-------------------------------------------------------------------
 *
 * Name:        OpenRadio
 *
 * Purpose:     Connect to the TNC the configuration asks for.
 *
 * Description:	In order of preference: DNS-SD discovery, a KISS TCP
 *		address, the serial port.
 *
 *--------------------------------------------------------------------*/

func OpenRadio(ctx context.Context, c *GatewayConfig) (Radio, error) {
	var l = stageLogger("radio")

	var addr = c.Radio.KissTCP
	if c.Radio.Discover {
		var tnc, err = DiscoverKissTCP(ctx, c.Radio.DiscoverTimeout)
		if err != nil {
			return nil, err
		}
		l.Info("Discovered KISS TCP TNC", "name", tnc.Name, "addr", tnc.Addr)
		addr = tnc.Addr
	}

	if addr != "" {
		var r, err = DialKissTCP(ctx, addr)
		if err != nil {
			return nil, err
		}
		l.Info("Connected to KISS TCP TNC", "addr", addr)
		return r, nil
	}

	var r, err = OpenSerial(c.Radio.Device, c.Radio.Baud)
	if err != nil {
		return nil, err
	}
	l.Info("Opened serial port", "device", c.Radio.Device, "baud", c.Radio.Baud)
	return r, nil
}

func KissgateMain() {
	os.Exit(KissgateRun(os.Args[1:], os.Stdout))
}

// KissgateRun returns the process exit status.
func KissgateRun(args []string, stdout io.Writer) int {
	var c, err = ParseArgs(args, stdout)
	if errors.Is(err, ErrHelpShown) {
		return 0
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		Logger().Error("Configuration", "err", err)
		return 2
	}

	if err := LogInit(c.LogLevel, c.TimestampFormat); err != nil {
		Logger().Error("Logging", "err", err)
		return 2
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	Logger().Info("Starting", "software", SOFTWARE_NAME, "version", Version(), "identity", c.Login(), "mode", c.Mode)

	var passcode = c.ResolvePasscode()

	var radio Radio
	radio, err = OpenRadio(ctx, c)
	if err != nil {
		Logger().Error("Could not open TNC", "err", err)
		return 1
	}

	var plog *PacketLog
	plog, err = OpenPacketLog(c.PacketLog)
	if err != nil {
		radio.Close() //nolint:errcheck
		Logger().Error("Packet log", "err", err)
		return 1
	}

	var g *Gateway
	g, err = NewGateway(c, radio, passcode, plog)
	if err != nil {
		radio.Close() //nolint:errcheck
		plog.Close()
		Logger().Error("Could not start", "err", err)
		return 1
	}

	g.Ready = func() {
		daemon.SdNotify(false, daemon.SdNotifyReady) //nolint:errcheck
	}

	// SIGHUP after logrotate has moved the packet log away.
	var hup = make(chan os.Signal, 1)
	signal.Notify(hup, unix.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				Logger().Info("SIGHUP, reopening packet log")
				plog.Reopen()
			}
		}
	}()

	err = g.Run(ctx)

	daemon.SdNotify(false, daemon.SdNotifyStopping) //nolint:errcheck

	if err != nil && !errors.Is(err, context.Canceled) {
		Logger().Error("Stopped on error", "err", err)
		return 1
	}

	return 0
}
