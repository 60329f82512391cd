package kissgate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Stuff_Escapes(t *testing.T) {
	var out = Stuff(KISS_CMD_DATA_FRAME, []byte{0x01, FEND, 0x02, FESC, 0x03})

	assert.Equal(t, []byte{FEND, 0x00, 0x01, FESC, TFEND, 0x02, FESC, TFESC, 0x03, FEND}, out)
}

func Test_Destuff_Escapes(t *testing.T) {
	var kf, err = Destuff([]byte{FEND, 0x00, 'a', FESC, TFEND, 'b', FESC, TFESC, 'c', FEND})

	require.NoError(t, err)
	assert.True(t, kf.IsData())
	assert.Equal(t, []byte{'a', FEND, 'b', FESC, 'c'}, kf.Payload)
}

func Test_Destuff_NoDoubleProcessing(t *testing.T) {
	// FESC TFESC becomes FESC, which must not then combine with the TFEND after it.
	var kf, err = Destuff([]byte{FEND, 0x00, FESC, TFESC, TFEND, FEND})

	require.NoError(t, err)
	assert.Equal(t, []byte{FESC, TFEND}, kf.Payload)
}

func Test_Destuff_OptionalFENDs(t *testing.T) {
	var kf, err = Destuff([]byte{0x00, 'x'})

	require.NoError(t, err)
	assert.Equal(t, []byte("x"), kf.Payload)
}

func Test_Destuff_Empty(t *testing.T) {
	var _, err = Destuff([]byte{FEND, FEND})

	assert.ErrorIs(t, err, ErrShortKissFrame)
}

func Test_Destuff_StrayEscape(t *testing.T) {
	var kf, err = Destuff([]byte{FEND, 0x00, 'a', FESC, 'b', FEND})

	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), kf.Payload)
}

func Test_KissFrame_NonData(t *testing.T) {
	var tests = []struct {
		name    string
		cmd     byte
		port    int
		command int
	}{
		{"txdelay", 0x01, 0, KISS_CMD_TXDELAY},
		{"data on port 1", 0x10, 1, KISS_CMD_DATA_FRAME},
		{"set hardware port 2", 0x26, 2, KISS_CMD_SET_HARDWARE},
		{"return", 0xff, 15, KISS_CMD_END_KISS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kf, err = Destuff(Stuff(tt.cmd, []byte{1, 2, 3}))

			require.NoError(t, err)
			assert.False(t, kf.IsData())
			assert.Equal(t, tt.port, kf.Port())
			assert.Equal(t, tt.command, kf.Command())
			assert.NotEmpty(t, kf.String())
		})
	}
}

func Test_Stuff_Destuff_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var cmd = rapid.Byte().Draw(t, "cmd")
		var payload = rapid.SliceOf(rapid.Byte()).Draw(t, "payload")

		var stuffed = Stuff(cmd, payload)

		// Only the two delimiters may be FEND.
		assert.Equal(t, 2, bytes.Count(stuffed, []byte{FEND}))
		assert.Equal(t, byte(FEND), stuffed[0])
		assert.Equal(t, byte(FEND), stuffed[len(stuffed)-1])

		var kf, err = Destuff(stuffed)
		require.NoError(t, err)
		assert.Equal(t, cmd, kf.PortCommand)
		assert.Equal(t, len(payload), len(kf.Payload))
		if len(payload) > 0 {
			assert.Equal(t, payload, kf.Payload)
		}
	})
}
