package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	KISS frame encapsulation and extraction.
 *
 * Description: The KISS TNC protocol is described in http://www.ka9q.net/papers/kiss.html
 *
 * 		Briefly, a frame is composed of
 *
 *			* FEND (0xC0)
 *			* Contents - with special escape sequences so a 0xc0
 *				byte in the data is not taken as end of frame.
 *			* FEND
 *
 *		The first byte of the contents holds:
 *
 *			* port (radio channel) in upper nybble.
 *			* command in lower nybble.
 *
 *		Only "data frame on port 0" carries an AX.25 packet that
 *		we care about.  Everything else is ignored, it is not an
 *		error for a TNC to send us something else.
 *
 *---------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
)

const KISS_CMD_DATA_FRAME = 0
const KISS_CMD_TXDELAY = 1
const KISS_CMD_PERSISTENCE = 2
const KISS_CMD_SLOTTIME = 3
const KISS_CMD_TXTAIL = 4
const KISS_CMD_FULLDUPLEX = 5
const KISS_CMD_SET_HARDWARE = 6
const KISS_CMD_END_KISS = 15

/*
 * Special characters used by SLIP protocol.
 */

const FEND = 0xC0
const FESC = 0xDB
const TFEND = 0xDC
const TFESC = 0xDD

var (
	ErrShortKissFrame = errors.New("kiss frame has no command byte")
	ErrNotDataFrame   = errors.New("kiss frame is not a port 0 data frame")
)

var kissCommandNames = [16]string{
	"Data frame", "TXDELAY", "P", "SlotTime",
	"TXtail", "FullDuplex", "SetHardware", "Invalid 7",
	"Invalid 8", "Invalid 9", "Invalid 10", "Invalid 11",
	"Invalid 12", "Invalid 13", "Invalid 14", "Return"}

// KissFrame is the content of one frame after the escapes are removed.
type KissFrame struct {
	PortCommand byte
	Payload     []byte
}

// Port is the radio channel from the upper nybble.
func (f KissFrame) Port() int {
	return int(f.PortCommand>>4) & 0xf
}

// Command is the lower nybble.
func (f KissFrame) Command() int {
	return int(f.PortCommand) & 0xf
}

// IsData is true only for a data frame on port 0.
func (f KissFrame) IsData() bool {
	return f.PortCommand == KISS_CMD_DATA_FRAME
}

func (f KissFrame) String() string {
	return fmt.Sprintf("%s, port %d, %d bytes", kissCommandNames[f.Command()], f.Port(), len(f.Payload))
}

/*-------------------------------------------------------------------
 *
 * Name:        Stuff
 *
 * Purpose:     Encapsulate a frame into KISS format.
 *
 * Inputs:	cmd	- The "type indicator" byte with port and command.
 *			  If it happens to be FEND or FESC, it is escaped,
 *			  like any other byte.
 *
 *		frame	- AX.25 frame without FCS.
 *			  Note that this is binary data and can contain nul values.
 *
 * Returns:	FEND, escaped contents, FEND.
 *		Absolute max length is twice input plus 3.
 *
 *-----------------------------------------------------------------*/

func Stuff(cmd byte, frame []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(frame) + 3)

	buf.WriteByte(FEND)
	stuffByte(&buf, cmd)
	for _, b := range frame {
		stuffByte(&buf, b)
	}
	buf.WriteByte(FEND)

	return buf.Bytes()
}

func stuffByte(buf *bytes.Buffer, b byte) {
	switch b {
	case FEND:
		buf.WriteByte(FESC)
		buf.WriteByte(TFEND)
	case FESC:
		buf.WriteByte(FESC)
		buf.WriteByte(TFESC)
	default:
		buf.WriteByte(b)
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Destuff
 *
 * Purpose:     Extract original data from a KISS frame.
 *
 * Inputs:	raw	- The KISS encoded representation, as found by
 *			  the Framer:
 *				FEND		- optional here.
 *				data		- with escapes.
 *				FEND		- optional here.
 *
 * Returns:	Command byte and AX.25 payload.
 *
 * Description:	Single left to right pass.  An escape consumes the
 *		following byte so a replaced byte is never looked at again.
 *		An FESC followed by anything else, or at the very end, is
 *		a protocol error; the stray FESC is dropped and the byte
 *		after it kept, which is what most TNCs do.
 *
 *-----------------------------------------------------------------*/

func Destuff(raw []byte) (KissFrame, error) {
	if len(raw) > 0 && raw[0] == FEND {
		raw = raw[1:]
	}
	if len(raw) > 0 && raw[len(raw)-1] == FEND {
		raw = raw[:len(raw)-1]
	}

	var out = make([]byte, 0, len(raw))
	var escaped = false
	for _, b := range raw {
		if escaped {
			switch b {
			case TFEND:
				out = append(out, FEND)
			case TFESC:
				out = append(out, FESC)
			default:
				stageLogger("framer").Debug("KISS protocol error, unexpected byte after FESC", "byte", fmt.Sprintf("0x%02x", b))
				out = append(out, b)
			}
			escaped = false
		} else if b == FESC {
			escaped = true
		} else {
			out = append(out, b)
		}
	}

	if len(out) == 0 {
		return KissFrame{}, ErrShortKissFrame //nolint:exhaustruct
	}

	return KissFrame{PortCommand: out[0], Payload: out[1:]}, nil
}
