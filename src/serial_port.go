package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Radio transport for a KISS TNC on a serial port.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/pkg/term"
)

// SerialRadio is a TNC on /dev/tty..., /dev/rfcomm0 for Bluetooth, or a pty.
type SerialRadio struct {
	name string
	fd   *term.Term
}

/*-------------------------------------------------------------------
 *
 * Name:	OpenSerial
 *
 * Purpose:	Open serial port.
 *
 * Inputs:	devicename	- Usually /dev/tty...
 *				  Could be /dev/rfcomm0 for Bluetooth.
 *
 *		baud		- Speed.  1200, 4800, 9600 bps, etc.
 *				  If 0, leave it alone.
 *
 *---------------------------------------------------------------*/

func OpenSerial(devicename string, baud int) (*SerialRadio, error) {
	var fd, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", devicename, err)
	}

	switch baud {
	case 0: /* Leave it alone. */
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		err = fd.SetSpeed(baud)
	default:
		stageLogger("radio").Warn("Unsupported serial port speed, using 4800", "device", devicename, "baud", baud)
		err = fd.SetSpeed(4800)
	}
	if err != nil {
		fd.Close() //nolint:errcheck
		return nil, fmt.Errorf("set speed on %s: %w", devicename, err)
	}

	return &SerialRadio{name: devicename, fd: fd}, nil
}

func (s *SerialRadio) String() string {
	return s.name
}

/*-------------------------------------------------------------------
 *
 * Name:        ReadAvailable
 *
 * Purpose:     Get whatever has arrived from the serial port.
 *
 * Description:	Ask the driver how much is waiting and read exactly
 *		that, so the read never blocks.
 *
 *--------------------------------------------------------------------*/

func (s *SerialRadio) ReadAvailable() ([]byte, error) {
	var n, err = s.fd.Available()
	if err != nil {
		return nil, fmt.Errorf("serial port %s: %w", s.name, err)
	}
	if n <= 0 {
		return nil, nil
	}

	var buf = make([]byte, n)
	var got int
	got, err = s.fd.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("serial port %s read: %w", s.name, err)
	}

	return buf[:got], nil
}

func (s *SerialRadio) WriteFrame(frame []byte) error {
	var written, err = s.fd.Write(frame)
	if err != nil {
		return fmt.Errorf("serial port %s write: %w", s.name, err)
	}
	if written != len(frame) {
		return fmt.Errorf("serial port %s: short write %d of %d", s.name, written, len(frame))
	}
	return nil
}

func (s *SerialRadio) Close() error {
	return s.fd.Close()
}
