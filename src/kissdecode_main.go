package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Standalone tool to explain KISS frames and AX.25 packets.
 *
 * Inputs:	stdin, one frame per line in hexadecimal, spaces allowed.
 *
 *		c0 00 82 a0 ae ae 62 40 60 96 92 88 8a 64 40 63 03 f0 3e 74 65 73 74 c0
 *
 *		If it begins with C0 or 00 (which would be impossible for
 *		an AX.25 address) it is processed as KISS, otherwise as a
 *		bare AX.25 frame.
 *
 *		With --raw, stdin is the binary byte stream from a TNC,
 *		e.g. a capture of the serial port.
 *
 * Outputs:	stdout, the TNC2 monitor line or the reason it could not
 *		be decoded.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

var hexLineRegexp = regexp.MustCompile("^[[:xdigit:]]{2}( ?[[:xdigit:]]{2})*$")

func KissDecodeMain() {
	os.Exit(KissDecodeRun(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func KissDecodeRun(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	var flags = pflag.NewFlagSet("kissdecode", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var raw = flags.BoolP("raw", "r", false, "Read the binary KISS byte stream from stdin rather than hex lines.")
	var checkFCS = flags.BoolP("fcs", "f", false, "Frames still carry their FCS.  Check and remove it.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "kissdecode - explain KISS frames and AX.25 packets.\n\n")
		fmt.Fprintf(stderr, "Usage: kissdecode [options] < input\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *help {
		flags.Usage()
		return 0
	}

	if *raw {
		var f = NewFramer()
		var buf = make([]byte, NETTNCBUFSIZ)
		for {
			var n, err = stdin.Read(buf)
			for frame := range f.Feed(buf[:n]) {
				DecodeKissFrame(stdout, frame, *checkFCS)
			}
			if err == io.EOF {
				return 0
			}
			if err != nil {
				fmt.Fprintf(stderr, "Read error: %s\n", err)
				return 1
			}
		}
	}

	var scanner = bufio.NewScanner(stdin)
	for scanner.Scan() {
		var line = strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			/* comment or blank line */
			fmt.Fprintf(stdout, "%s\n", line)
			continue
		}
		DecodeHexLine(stdout, line, *checkFCS)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "Read error: %s\n", err)
		return 1
	}

	return 0
}

// DecodeHexLine explains one line of hexadecimal bytes.
func DecodeHexLine(w io.Writer, line string, checkFCS bool) {
	if !hexLineRegexp.MatchString(line) {
		fmt.Fprintf(w, "ERROR: not hexadecimal bytes: %s\n", line)
		return
	}

	var data, err = hex.DecodeString(strings.ReplaceAll(line, " ", ""))
	if err != nil {
		fmt.Fprintf(w, "ERROR: %s\n", err)
		return
	}

	if data[0] == FEND || data[0] == KISS_CMD_DATA_FRAME {
		DecodeKissFrame(w, data, checkFCS)
		return
	}

	decodeAX25(w, data, checkFCS)
}

// DecodeKissFrame explains one KISS frame, FENDs optional.
func DecodeKissFrame(w io.Writer, frame []byte, checkFCS bool) {
	var kf, err = Destuff(frame)
	if err != nil {
		fmt.Fprintf(w, "ERROR: %s\n", err)
		return
	}

	fmt.Fprintf(w, "--- KISS frame: %s ---\n", kf)
	if !kf.IsData() {
		fmt.Fprintf(w, "%s\n", hexDump(kf.Payload))
		return
	}

	decodeAX25(w, kf.Payload, checkFCS)
}

func decodeAX25(w io.Writer, frame []byte, checkFCS bool) {
	if checkFCS {
		var stripped, ok = StripFCS(frame)
		if !ok {
			fmt.Fprintf(w, "ERROR: bad FCS\n")
			return
		}
		fmt.Fprintf(w, "FCS ok\n")
		frame = stripped
	}

	var p, err = Decode(frame)
	if err != nil {
		fmt.Fprintf(w, "ERROR: %s\n", err)
		return
	}

	fmt.Fprintf(w, "%s\n", FormatTNC2(p))
	fmt.Fprintf(w, "  source %s, destination %s, control 0x%02x, pid 0x%02x, %d bytes information\n",
		p.Source.WithSSID(), p.Destination.WithSSID(), p.Control, p.PID, len(p.Payload))

	if _, err := IGateLine(p); err != nil {
		fmt.Fprintf(w, "  would not be gated: %s\n", err)
	}
}
