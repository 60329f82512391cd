package kissgate

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A pseudo terminal stands in for the TNC.  The gateway opens the slave
// side by name, the test plays TNC on the master.
func openTestPty(t *testing.T, baud int) (*SerialRadio, *os.File) {
	t.Helper()

	var ptmx, pts, err = pty.Open()
	if err != nil {
		t.Skipf("no pseudo terminal available: %s", err)
	}
	t.Cleanup(func() {
		ptmx.Close()
		pts.Close()
	})

	var r *SerialRadio
	r, err = OpenSerial(pts.Name(), baud)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return r, ptmx
}

func TestSerialRadio_Read(t *testing.T) {
	var r, tnc = openTestPty(t, 0)

	var data, err = r.ReadAvailable()
	require.NoError(t, err)
	assert.Empty(t, data)

	var frame = kissUI(t, "W1ABC-5", ">over serial")
	_, err = tnc.Write(frame)
	require.NoError(t, err)

	assert.Equal(t, frame, readAll(t, r, len(frame)))
}

func TestSerialRadio_Write(t *testing.T) {
	var r, tnc = openTestPty(t, 9600)

	var frame = kissUI(t, "N0CALL-7", ">beacon")
	require.NoError(t, r.WriteFrame(frame))

	var got = make([]byte, len(frame))
	tnc.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	var _, err = io.ReadFull(tnc, got)
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}

func TestSerialRadio_GatewayEndToEnd(t *testing.T) {
	var r, tnc = openTestPty(t, 115200)

	var c = validConfig()
	var g = testGateway(t, c, r)

	var _, err = tnc.Write(mustHex(t, philadelphiaKiss))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		var data, err = g.radio.ReadAvailable()
		require.NoError(t, err)
		g.HandleBytes(data)
		return g.Queue().Len() == 1
	}, 2*time.Second, time.Millisecond)
}

func TestOpenSerial_Missing(t *testing.T) {
	var _, err = OpenSerial("/nonexistent/ttyKISS", 0)

	assert.Error(t, err)
}
