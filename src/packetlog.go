package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Save received and transmitted packets to a log file.
 *
 * Description: Rather than saving the raw, sometimes rather cryptic and
 *		unreadable, format, write separated properties into
 *		CSV format for easy reading and later processing.
 *
 *		There are two alternatives here.
 *
 *		packet_log: /var/log/kissgate/		Daily names will be
 *							created in this directory.
 *
 *		packet_log: /var/log/kissgate.csv	Single file.
 *
 *		A path that is an existing directory, or ends with "/",
 *		gets daily names.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var packetLogHeader = []string{"dir", "utime", "isotime", "source", "heard", "destination", "path", "dti", "pid", "info"}

// PacketLog is shared by the RX and TX tasks.  A nil *PacketLog is valid
// and logs nothing.
type PacketLog struct {
	mu sync.Mutex

	dailyNames bool
	path       string // Directory for daily names, otherwise the file.

	fp        *os.File // Kept open, not opened and closed for every item.
	w         *csv.Writer
	openFname string
}

/*------------------------------------------------------------------
 *
 * Function:	OpenPacketLog
 *
 * Inputs:	path	- Log file name or directory.
 *			  Empty string disables feature.
 *
 * Returns:	nil, nil when disabled.
 *
 *------------------------------------------------------------------*/

func OpenPacketLog(path string) (*PacketLog, error) {
	if path == "" {
		return nil, nil //nolint:nilnil
	}

	var l = &PacketLog{path: path} //nolint:exhaustruct

	var stat, statErr = os.Stat(path)
	switch {
	case statErr == nil && stat.IsDir():
		l.dailyNames = true
	case strings.HasSuffix(path, "/"):
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log file location %q: %w", path, err)
		}
		stageLogger("log").Info("Log file location has been created", "dir", path)
		l.dailyNames = true
	}

	return l, nil
}

/*------------------------------------------------------------------
 *
 * Function:	Write
 *
 * Purpose:	Save information to log file.
 *
 * Inputs:	dir	- "rx" or "tx".
 *		p	- Packet.
 *		now	- When.  Logged as UTC.
 *
 * Description:	Errors are logged and otherwise ignored.  Not being able
 *		to write the packet log is no reason to stop gating.
 *
 *------------------------------------------------------------------*/

func (l *PacketLog) Write(dir string, p *Ax25Packet, now time.Time) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now = now.UTC()

	if err := l.open(now); err != nil {
		stageLogger("log").Error("Can't open log file for write", "err", err)
		return
	}

	var sdti string
	if len(p.Payload) > 0 {
		sdti = string(rune(p.Payload[0]))
	}

	var record = []string{
		dir,
		strconv.FormatInt(now.Unix(), 10),
		now.Format("2006-01-02T15:04:05Z"),
		p.Source.String(),
		heardStation(p),
		p.Destination.String(),
		strings.Join(p.Path(), ","),
		sdti,
		fmt.Sprintf("0x%02x", p.PID),
		p.Info(),
	}

	l.w.Write(record) //nolint:errcheck
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		stageLogger("log").Error("Error writing log file", "err", err)
	}
}

func (l *PacketLog) open(now time.Time) error {
	var fullPath = l.path

	if l.dailyNames {
		// Generate the file name from current date, UTC.
		// Why UTC rather than local time?  I don't recall the reasoning.
		// It's probably so that it is consistent with the time stamps
		// within the file.
		var fname = now.Format("2006-01-02.log")

		// Close current file if name has changed
		if l.fp != nil && fname != l.openFname {
			l.close()
		}
		fullPath = filepath.Join(l.path, fname)
		l.openFname = fname
	}

	if l.fp != nil {
		return nil
	}

	// See if file already exists and not empty.
	// This is used later to write a header if it did not exist already.
	var stat, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil && stat.Size() > 0

	var f, err = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	stageLogger("log").Info("Opening log file", "file", fullPath)

	l.fp = f
	l.w = csv.NewWriter(f)

	if !alreadyThere {
		l.w.Write(packetLogHeader) //nolint:errcheck
	}

	return nil
}

func (l *PacketLog) close() {
	if l.fp != nil {
		l.w.Flush()
		l.fp.Close() //nolint:errcheck
		l.fp = nil
		l.w = nil
	}
}

// Reopen closes the current file.  The next Write opens it again by name,
// creating it if it has been moved away.
func (l *PacketLog) Reopen() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.close()
}

// Close is safe on a nil or already closed log.
func (l *PacketLog) Close() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.close()
}

/*------------------------------------------------------------------
 *
 * Function:	heardStation
 *
 * Purpose:	Who are we hearing?  Original station or digipeater?
 *
 * Returns:	The last digipeater that has repeated it, otherwise the
 *		source.  If that is a generic WIDEn it is more useful to
 *		show the one before, marked with "?".
 *
 *------------------------------------------------------------------*/

func heardStation(p *Ax25Packet) string {
	var h = -1
	for i, d := range p.Digipeaters {
		if d.WasDigipeated {
			h = i
		}
	}

	if h < 0 {
		return p.Source.String()
	}

	var heard = p.Digipeaters[h].String()
	if h >= 1 && len(heard) == 5 && strings.HasPrefix(heard, "WIDE") && unicode.IsDigit(rune(heard[4])) {
		return p.Digipeaters[h-1].String() + "?"
	}
	return heard
}
