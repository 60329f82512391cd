package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Radio transport for a network KISS TNC.
 *
 * Description:	Most software TNCs, soundmodem and ldsped among them, offer KISS
 *		over TCP, typically on port 8001.  The byte stream is
 *		exactly what a serial TNC would send.
 *
 *		A goroutine reads from the socket and accumulates the
 *		bytes so that ReadAvailable can hand them over without
 *		blocking.
 *
 *		There is no reattach.  If the TNC goes away, that is a
 *		transport failure and the RX task ends.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

const NETTNCBUFSIZ = 2048

const KISS_TCP_WRITE_TIMEOUT = 10 * time.Second

type NetRadio struct {
	addr string
	conn net.Conn

	mu      sync.Mutex
	pending []byte
	err     error
}

/*-------------------------------------------------------------------
 *
 * Name:        DialKissTCP
 *
 * Purpose:     Attach to one network KISS TNC.
 *
 * Inputs:	addr	- host:port, often "localhost:8001".
 *
 *--------------------------------------------------------------------*/

func DialKissTCP(ctx context.Context, addr string) (*NetRadio, error) {
	var d net.Dialer
	var conn, err = d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("attach to network TNC %s: %w", addr, err)
	}

	return newNetRadio(addr, conn), nil
}

func newNetRadio(addr string, conn net.Conn) *NetRadio {
	var n = &NetRadio{addr: addr, conn: conn} //nolint:exhaustruct
	go n.listen()
	return n
}

func (n *NetRadio) listen() {
	var buf = make([]byte, NETTNCBUFSIZ)
	for {
		var got, err = n.conn.Read(buf)

		n.mu.Lock()
		n.pending = append(n.pending, buf[:got]...)
		if err != nil {
			n.err = fmt.Errorf("lost communication with network TNC %s: %w", n.addr, err)
		}
		n.mu.Unlock()

		if err != nil {
			return
		}
	}
}

func (n *NetRadio) String() string {
	return n.addr
}

// ReadAvailable returns what the listener has collected.  Bytes that
// arrived before the connection failed are delivered before the error.
func (n *NetRadio) ReadAvailable() ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.pending) > 0 {
		var out = n.pending
		n.pending = nil
		return out, nil
	}

	return nil, n.err
}

func (n *NetRadio) WriteFrame(frame []byte) error {
	n.conn.SetWriteDeadline(time.Now().Add(KISS_TCP_WRITE_TIMEOUT)) //nolint:errcheck
	var _, err = n.conn.Write(frame)
	if err != nil {
		return fmt.Errorf("network TNC %s write: %w", n.addr, err)
	}
	return nil
}

func (n *NetRadio) Close() error {
	return n.conn.Close()
}
