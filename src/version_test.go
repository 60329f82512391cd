package kissgate

import (
	"bytes"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildSettingOrDefault(t *testing.T) {
	assert.Equal(t, "fallback", getBuildSettingOrDefault(nil, "vcs.revision", "fallback"))

	var bi = &debug.BuildInfo{ //nolint:exhaustruct
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	assert.Equal(t, "abc123", getBuildSettingOrDefault(bi, "vcs.revision", "fallback"))
	assert.Equal(t, "fallback", getBuildSettingOrDefault(bi, "vcs.time", "fallback"))
}

func TestVersion(t *testing.T) {
	var v = Version()

	assert.NotEmpty(t, v)
	assert.False(t, strings.ContainsAny(v, " \t\r\n"))

	var old = KISSGATE_VERSION
	t.Cleanup(func() { KISSGATE_VERSION = old })
	KISSGATE_VERSION = "1.2.3"
	assert.Equal(t, "1.2.3", Version())
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer

	PrintVersion(&buf, false)
	assert.True(t, strings.HasPrefix(buf.String(), "kissgate - Version "))
	assert.NotContains(t, buf.String(), "BuildInfo")

	buf.Reset()
	PrintVersion(&buf, true)
	assert.Contains(t, buf.String(), "BuildInfo")
}
