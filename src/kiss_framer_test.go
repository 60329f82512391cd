package kissgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func Test_Framer_SingleFrame(t *testing.T) {
	var f = NewFramer()

	var frames = f.FeedAll([]byte{FEND, 0x00, 'h', 'i', FEND})

	require.Len(t, frames, 1)
	assert.Equal(t, RawFrame{FEND, 0x00, 'h', 'i', FEND}, frames[0])
	assert.Equal(t, 0, f.Buffered())
	assert.Equal(t, 0, f.Discarded())
}

func Test_Framer_Partial(t *testing.T) {
	var f = NewFramer()

	assert.Empty(t, f.FeedAll([]byte{FEND, 0x00, 'h'}))
	assert.Equal(t, 3, f.Buffered())

	var frames = f.FeedAll([]byte{'i', FEND})
	require.Len(t, frames, 1)
	assert.Equal(t, RawFrame{FEND, 0x00, 'h', 'i', FEND}, frames[0])
}

func Test_Framer_NoiseBeforeFrame(t *testing.T) {
	var f = NewFramer()

	var frames = f.FeedAll([]byte{'x', 'y', 'z', FEND, 0x00, 'a', FEND})

	require.Len(t, frames, 1)
	assert.Equal(t, RawFrame{FEND, 0x00, 'a', FEND}, frames[0])
	assert.Equal(t, 3, f.Discarded())
}

func Test_Framer_AllNoise(t *testing.T) {
	var f = NewFramer()

	assert.Empty(t, f.FeedAll([]byte("garbage")))
	assert.Equal(t, 0, f.Buffered())
	assert.Equal(t, 7, f.Discarded())
}

func Test_Framer_EmptyFramesDropped(t *testing.T) {
	var f = NewFramer()

	var frames = f.FeedAll([]byte{FEND, FEND, FEND, 0x00, 'a', FEND, FEND, FEND})

	// FEND FEND is empty.  The third FEND opens the real frame.
	require.Len(t, frames, 1)
	assert.Equal(t, RawFrame{FEND, 0x00, 'a', FEND}, frames[0])
}

func Test_Framer_SeveralInOneChunk(t *testing.T) {
	var f = NewFramer()

	var data []byte
	data = append(data, Stuff(0, []byte("one"))...)
	data = append(data, Stuff(0, []byte("two"))...)
	data = append(data, Stuff(0, []byte("three"))...)

	var frames = f.FeedAll(data)

	require.Len(t, frames, 3)
	for i, want := range []string{"one", "two", "three"} {
		var kf, err = Destuff(frames[i])
		require.NoError(t, err)
		assert.Equal(t, want, string(kf.Payload))
	}
}

func Test_Framer_EarlyStop(t *testing.T) {
	var f = NewFramer()

	var data []byte
	data = append(data, Stuff(0, []byte("one"))...)
	data = append(data, Stuff(0, []byte("two"))...)

	for frame := range f.Feed(data) {
		assert.Equal(t, RawFrame(Stuff(0, []byte("one"))), frame)
		break
	}

	// The frame not yet consumed comes out of the next call.
	var frames = f.FeedAll(nil)
	require.Len(t, frames, 1)
	assert.Equal(t, RawFrame(Stuff(0, []byte("two"))), frames[0])
}

func Test_Framer_FramesDoNotAlias(t *testing.T) {
	var f = NewFramer()

	var first = f.FeedAll(Stuff(0, []byte("aaaa")))
	f.FeedAll(Stuff(0, []byte("bbbb")))

	require.Len(t, first, 1)
	assert.Equal(t, RawFrame(Stuff(0, []byte("aaaa"))), first[0])
}

func Test_Framer_Overflow(t *testing.T) {
	var f = NewFramer()

	var data = make([]byte, MAX_FRAMER_BUFFER+10)
	data[0] = FEND
	for i := 1; i < len(data); i++ {
		data[i] = 'x'
	}

	assert.Empty(t, f.FeedAll(data))
	assert.Equal(t, 0, f.Buffered())

	// Back in sync for the next frame.
	var frames = f.FeedAll(Stuff(0, []byte("ok")))
	require.Len(t, frames, 1)
}

func Test_Framer_Reset(t *testing.T) {
	var f = NewFramer()

	f.FeedAll([]byte{FEND, 0x00, 'p'})
	f.Reset()

	assert.Equal(t, 0, f.Buffered())
	assert.Empty(t, f.FeedAll([]byte{'q', FEND}))
}

// However the stream is split into chunks, the same frames come out.
func Test_Framer_ChunkingDoesNotMatter(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var payloads = rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 1, 40), 1, 8).Draw(t, "payloads")

		var stream []byte
		for _, p := range payloads {
			stream = append(stream, Stuff(KISS_CMD_DATA_FRAME, p)...)
		}

		var whole = NewFramer().FeedAll(stream)

		var split = NewFramer()
		var pieces []RawFrame
		var rest = stream
		for len(rest) > 0 {
			var n = rapid.IntRange(1, len(rest)).Draw(t, "n")
			pieces = append(pieces, split.FeedAll(rest[:n])...)
			rest = rest[n:]
		}

		require.Len(t, whole, len(payloads))
		assert.Equal(t, whole, pieces)
		assert.Equal(t, 0, split.Buffered())

		for i, raw := range whole {
			var kf, err = Destuff(raw)
			require.NoError(t, err)
			assert.Equal(t, payloads[i], kf.Payload)
		}
	})
}

func Test_Framer_GarbageBeforeFirstFrame(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var payloads = rapid.SliceOfN(rapid.SliceOfN(rapid.Byte(), 1, 40), 1, 8).Draw(t, "payloads")
		var garbage = rapid.SliceOfN(rapid.Byte().Filter(func(b byte) bool { return b != FEND }), 0, 64).Draw(t, "garbage")

		var stream []byte
		for _, p := range payloads {
			stream = append(stream, Stuff(KISS_CMD_DATA_FRAME, p)...)
		}
		var clean = NewFramer().FeedAll(stream)

		var noisy = NewFramer()
		var got []RawFrame
		var rest = append(append([]byte{}, garbage...), stream...)
		for len(rest) > 0 {
			var n = rapid.IntRange(1, len(rest)).Draw(t, "n")
			got = append(got, noisy.FeedAll(rest[:n])...)
			rest = rest[n:]
		}

		assert.Equal(t, clean, got)
		assert.Equal(t, len(garbage), noisy.Discarded())
	})
}
