package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Diagnostic logging for every stage of the gateway.
 *
 * Description:	All output goes through a single charmbracelet logger.
 *		Each stage attaches a "stage" field (framer, rx, tx,
 *		uplink, status) so that one line is enough to tell
 *		where something happened.
 *
 *		Received packets can also be echoed in "monitor" form,
 *		optionally preceded by a strftime style time stamp,
 *		like the -T option of the TNC this grew out of.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

var logMu sync.Mutex

var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
	Prefix:          "kissgate",
})

var monitorStamp *strftime.Strftime

var monitorOut io.Writer = os.Stdout

/*------------------------------------------------------------------
 *
 * Function:	LogInit
 *
 * Purpose:	Configure logging at application startup.
 *
 * Inputs:	level		- "debug", "info", "warn" or "error".
 *				  Empty string leaves the default (info).
 *
 *		timestampFormat	- strftime pattern for monitor lines.
 *				  Empty string means no time stamp.
 *
 *------------------------------------------------------------------*/

func LogInit(level string, timestampFormat string) error {
	logMu.Lock()
	defer logMu.Unlock()

	if level != "" {
		var lvl, err = log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level %q: %w", level, err)
		}
		logger.SetLevel(lvl)
	}

	monitorStamp = nil
	if timestampFormat != "" {
		var f, err = strftime.New(timestampFormat)
		if err != nil {
			return fmt.Errorf("timestamp format %q: %w", timestampFormat, err)
		}
		monitorStamp = f
	}

	return nil
}

// SetLogger replaces the package logger.  Tests use this to capture output.
func SetLogger(l *log.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

// Logger returns the package logger.
func Logger() *log.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	return logger
}

// SetMonitorOutput redirects monitor lines, nil to disable them.
func SetMonitorOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	if w == nil {
		w = io.Discard
	}
	monitorOut = w
}

func stageLogger(stage string) *log.Logger {
	return Logger().With("stage", stage)
}

/*------------------------------------------------------------------
 *
 * Function:	monitorPrint
 *
 * Purpose:	Print one received or transmitted packet in monitor form.
 *
 * Inputs:	prefix	- "[rx]", "[tx]" ...
 *		line	- TNC2 text.
 *
 *------------------------------------------------------------------*/

func monitorPrint(prefix string, line string, now time.Time) {
	logMu.Lock()
	defer logMu.Unlock()

	var sb strings.Builder
	if monitorStamp != nil {
		sb.WriteString(monitorStamp.FormatString(now))
		sb.WriteByte(' ')
	}
	sb.WriteString(prefix)
	sb.WriteByte(' ')
	sb.WriteString(line)
	sb.WriteByte('\n')

	io.WriteString(monitorOut, sb.String()) //nolint:errcheck
}

// hexDump renders bytes as space separated hex for log fields.
func hexDump(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var s = hex.EncodeToString(b)
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s[i : i+2])
	}
	return sb.String()
}
