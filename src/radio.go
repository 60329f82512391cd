package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	The byte pipe to the KISS TNC.
 *
 * Description:	The gateway does not care whether the TNC is on a
 *		serial port, a pseudo terminal or a TCP socket.  All it
 *		needs is a non-blocking read of whatever bytes are
 *		waiting and a write of one complete KISS frame.
 *
 *		Reads and writes must never overlap.  A beacon written
 *		in the middle of a read could otherwise be interleaved
 *		with it on some transports.  LockedRadio takes care of
 *		that for all of them.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"sync"
)

var ErrRadioClosed = errors.New("radio transport closed")

type Radio interface {
	// ReadAvailable returns the bytes received so far without waiting.
	// An empty result with nil error just means nothing is waiting.
	ReadAvailable() ([]byte, error)

	// WriteFrame sends one complete KISS frame.
	WriteFrame(frame []byte) error

	Close() error
}

// LockedRadio allows only a single read or write in flight.
type LockedRadio struct {
	mu     sync.Mutex
	radio  Radio
	closed bool
}

func NewLockedRadio(r Radio) *LockedRadio {
	return &LockedRadio{radio: r} //nolint:exhaustruct
}

func (l *LockedRadio) ReadAvailable() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrRadioClosed
	}
	return l.radio.ReadAvailable()
}

func (l *LockedRadio) WriteFrame(frame []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrRadioClosed
	}
	return l.radio.WriteFrame(frame)
}

// Close is safe to call more than once.
func (l *LockedRadio) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.radio.Close()
}
