package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Reassemble KISS frames from an unbounded byte stream.
 *
 * Description:	Bytes arrive from the TNC in arbitrary chunks.  A chunk
 *		can hold several frames, part of one, or line noise
 *		left over from the TNC being reset.
 *
 *		The Framer keeps whatever has not been consumed yet and
 *		hunts for a pair of FEND delimiters:
 *
 *			- Anything before the first FEND is noise and dropped.
 *			- FEND ... FEND is a candidate frame, both FENDs included.
 *			- FEND FEND (nothing between) is empty and dropped.
 *			- FEND without a partner waits for more input.
 *
 *		KISS frames can be sent back to back with a single FEND
 *		between them.  Since the closing FEND is consumed with its
 *		frame, the next frame then starts without a leading FEND
 *		and its first bytes are discarded as noise.  TNCs normally
 *		send FEND at both ends of every frame so this is rarely a
 *		concern, and it keeps the scanner a single state.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"iter"
)

const MAX_KISS_LEN = 2048 /* Some TNCs allow 1024 byte info part. */

// A partial frame bigger than this has lost its closing FEND.
const MAX_FRAMER_BUFFER = 16 * MAX_KISS_LEN

// RawFrame is one delimited frame exactly as it was on the wire.
type RawFrame []byte

// Framer is not safe for concurrent use.  It belongs to the RX task.
type Framer struct {
	buf []byte

	noise int // Bytes discarded while hunting, for statistics.
}

func NewFramer() *Framer {
	return &Framer{} //nolint:exhaustruct
}

// Buffered is the number of bytes held waiting for a closing FEND.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

// Discarded is the total number of noise bytes dropped so far.
func (f *Framer) Discarded() int {
	return f.noise
}

// Reset discards any partial frame.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}

/*-------------------------------------------------------------------
 *
 * Name:        Feed
 *
 * Purpose:     Add bytes to the reassembly buffer and produce the frames
 *		that are now complete.
 *
 * Inputs:	data	- Newly received bytes.  May be empty.
 *
 * Returns:	Sequence of RawFrame, lazily produced.  Each frame is a
 *		copy, it does not alias the internal buffer.
 *
 * Description:	The new bytes are appended right away.  Frames are only
 *		cut from the buffer as the sequence is consumed.  If the
 *		consumer stops early, the remaining frames are produced by
 *		the next Feed call.
 *
 *--------------------------------------------------------------------*/

func (f *Framer) Feed(data []byte) iter.Seq[RawFrame] {
	f.buf = append(f.buf, data...)

	return func(yield func(RawFrame) bool) {
		for {
			var frame, ok = f.next()
			if !ok {
				return
			}
			if !yield(frame) {
				return
			}
		}
	}
}

// FeedAll is Feed collected into a slice.
func (f *Framer) FeedAll(data []byte) []RawFrame {
	var frames []RawFrame
	for frame := range f.Feed(data) {
		frames = append(frames, frame)
	}
	return frames
}

func (f *Framer) next() (RawFrame, bool) {
	for {
		var first = bytes.IndexByte(f.buf, FEND)
		if first < 0 {
			// All noise.  Nothing can start a frame yet.
			f.noise += len(f.buf)
			f.buf = f.buf[:0]
			return nil, false
		}
		if first > 0 {
			f.noise += first
			f.buf = f.buf[first:]
			continue
		}

		var second = bytes.IndexByte(f.buf[1:], FEND)
		if second < 0 {
			if len(f.buf) > MAX_FRAMER_BUFFER {
				// Lost the closing FEND somewhere.  Resynchronize.
				stageLogger("framer").Warn("KISS message exceeded maximum length, discarding", "len", len(f.buf))
				f.noise += len(f.buf)
				f.buf = f.buf[:0]
			}
			return nil, false
		}
		second++

		var end = second + 1
		var frame = RawFrame(bytes.Clone(f.buf[:end]))
		f.buf = append(f.buf[:0], f.buf[end:]...)

		if len(frame) <= 2 {
			continue
		}

		return frame, true
	}
}
