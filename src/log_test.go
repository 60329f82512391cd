package kissgate

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var old = Logger()
	var buf bytes.Buffer
	SetLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})) //nolint:exhaustruct
	t.Cleanup(func() { SetLogger(old) })
	return &buf
}

func captureMonitor(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetMonitorOutput(&buf)
	t.Cleanup(func() {
		SetMonitorOutput(os.Stdout)
		LogInit("", "") //nolint:errcheck
	})
	return &buf
}

func TestLogInit(t *testing.T) {
	var old = Logger().GetLevel()
	t.Cleanup(func() {
		Logger().SetLevel(old)
		LogInit("", "") //nolint:errcheck
	})

	require.NoError(t, LogInit("debug", "%H:%M"))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())

	assert.Error(t, LogInit("chatty", ""))
	assert.Error(t, LogInit("", "%"))
}

func TestMonitorPrint(t *testing.T) {
	var out = captureMonitor(t)
	var when = time.Date(2024, 5, 1, 12, 30, 45, 0, time.UTC)

	monitorPrint("[rx]", "N0CALL>APRS:>hi", when)
	assert.Equal(t, "[rx] N0CALL>APRS:>hi\n", out.String())

	out.Reset()
	require.NoError(t, LogInit("", "%H:%M:%S"))
	monitorPrint("[tx]", "N0CALL-7>APRS:!beacon", when)
	assert.Equal(t, "12:30:45 [tx] N0CALL-7>APRS:!beacon\n", out.String())
}

func TestSetMonitorOutput_Nil(t *testing.T) {
	captureMonitor(t)
	SetMonitorOutput(nil)

	assert.NotPanics(t, func() { monitorPrint("[rx]", "x", time.Now()) })
}

func TestStageLogger(t *testing.T) {
	var buf = captureLogger(t)

	stageLogger("uplink").Info("Connected", "server", "rotate.aprs2.net:14580")

	assert.Contains(t, buf.String(), "stage=uplink")
	assert.Contains(t, buf.String(), "Connected")
}

func TestHexDump(t *testing.T) {
	assert.Equal(t, "", hexDump(nil))
	assert.Equal(t, "c0", hexDump([]byte{0xc0}))
	assert.Equal(t, "c0 00 82 a0", hexDump([]byte{0xc0, 0x00, 0x82, 0xa0}))
}
