package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Decode and encode AX.25 UI frames as used by APRS.
 *
 * Description:
 *
 *	A UI frame, as delivered by a KISS TNC, looks like this.
 *	The FCS has already been checked and removed by the TNC.
 *
 *	+--------+--------+-----------------+---------+-----+-------------+
 *	| dest   | source | digipeaters     | control | PID | information |
 *	| 7      | 7      | 0 to 8 times 7  | 1       | 1   | 0 to 256    |
 *	+--------+--------+-----------------+---------+-----+-------------+
 *
 *	Each address is 7 bytes:
 *
 *		6 bytes callsign, ASCII shifted left one bit, space padded.
 *
 *		1 byte  H RR SSID 0/1
 *
 *			bit 0	address extension.  1 for the last address.
 *			bit 1-4	SSID, 0 to 15.
 *			bit 5,6	reserved, normally both 1.
 *			bit 7	"has been repeated" for a digipeater address.
 *				For source and destination the same bit is the
 *				command/response bit.  We don't care about that.
 *
 *	This is not a connected mode implementation.  Control and PID are
 *	carried along but only UI (0x03) with no layer 3 (0xF0) is ever
 *	generated.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const AX25_DESTINATION = 0 /* Address positions in frame. */
const AX25_SOURCE = 1
const AX25_REPEATER_1 = 2
const AX25_MAX_REPEATERS = 8
const AX25_MIN_ADDRS = 2                                   /* Destination & Source. */
const AX25_MAX_ADDRS = AX25_MIN_ADDRS + AX25_MAX_REPEATERS /* Destination, Source, 8 digipeaters. */

const AX25_ADDR_LEN = 7
const AX25_MAX_CALL_LEN = 6
const AX25_MAX_SSID = 15

const AX25_UI_FRAME = 0x03       /* Control field value. */
const AX25_PID_NO_LAYER_3 = 0xf0 /* protocol ID used for APRS */

const SSID_H_MASK = 0x80
const SSID_RR_MASK = 0x60
const SSID_SSID_MASK = 0x1e
const SSID_SSID_SHIFT = 1
const SSID_LAST_MASK = 0x01

var (
	ErrTruncatedAddress    = errors.New("truncated address field")
	ErrMissingControlOrPid = errors.New("missing control or pid")
	ErrTooManyDigipeaters  = errors.New("too many digipeaters")
	ErrInvalidUTF8Payload  = errors.New("information part is not valid UTF-8")
	ErrInvalidCallsign     = errors.New("invalid callsign")
	ErrInvalidSSID         = errors.New("invalid ssid")
)

// DecodeError keeps the frame that could not be decoded for the log.
type DecodeError struct {
	Err   error
	Frame []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ax25 decode: %s (%d bytes)", e.Err, len(e.Frame))
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Ax25Address is one 7 byte address field.
type Ax25Address struct {
	Callsign      string
	SSID          uint8
	IsLast        bool
	WasDigipeated bool
}

// WithSSID is always "CALL-SSID", even for SSID 0.  This is the station
// identity form used for the self filter and for logging.
func (a Ax25Address) WithSSID() string {
	return a.Callsign + "-" + strconv.Itoa(int(a.SSID))
}

// String is the usual monitor / TNC2 form: "-0" is left off.
func (a Ax25Address) String() string {
	if a.SSID == 0 {
		return a.Callsign
	}
	return a.WithSSID()
}

// Same station, ignoring the flag bits.
func (a Ax25Address) Same(b Ax25Address) bool {
	return a.Callsign == b.Callsign && a.SSID == b.SSID
}

// Ax25Packet is a decoded UI frame.  It is never modified after decoding.
type Ax25Packet struct {
	Destination Ax25Address
	Source      Ax25Address
	Digipeaters []Ax25Address
	Control     byte
	PID         byte
	Payload     []byte
}

// IsAPRS is true for a UI frame with no layer 3 protocol.
func (p *Ax25Packet) IsAPRS() bool {
	return p.Control == AX25_UI_FRAME && p.PID == AX25_PID_NO_LAYER_3
}

/*------------------------------------------------------------------
 *
 * Name:	Info
 *
 * Purpose:	Information part in printable form.
 *
 * Returns:	Text when PID is 0xF0.
 *		Otherwise lowercase hexadecimal so that arbitrary binary
 *		survives any text based path unchanged.
 *
 *------------------------------------------------------------------*/

func (p *Ax25Packet) Info() string {
	if p.PID == AX25_PID_NO_LAYER_3 {
		return string(p.Payload)
	}
	return hex.EncodeToString(p.Payload)
}

// Path is the digipeater list, "*" marking those that have repeated it.
func (p *Ax25Packet) Path() []string {
	var path = make([]string, 0, len(p.Digipeaters))
	for _, d := range p.Digipeaters {
		var s = d.String()
		if d.WasDigipeated {
			s += "*"
		}
		path = append(path, s)
	}
	return path
}

/*------------------------------------------------------------------------------
 *
 * Name:	DecodeAddress
 *
 * Purpose:	Unpack one 7 byte address field.
 *
 * Inputs:	field	- exactly AX25_ADDR_LEN bytes.
 *
 *		position - AX25_DESTINATION, AX25_SOURCE, AX25_REPEATER_1...
 *			  The H bit is only meaningful for digipeaters.
 *
 *------------------------------------------------------------------------------*/

func DecodeAddress(field []byte, position int) Ax25Address {
	var call [AX25_MAX_CALL_LEN]byte
	for i := range AX25_MAX_CALL_LEN {
		call[i] = field[i] >> 1
	}

	var ssidByte = field[AX25_MAX_CALL_LEN]

	return Ax25Address{
		Callsign:      strings.TrimRight(string(call[:]), " \x00"),
		SSID:          (ssidByte & SSID_SSID_MASK) >> SSID_SSID_SHIFT,
		IsLast:        ssidByte&SSID_LAST_MASK != 0,
		WasDigipeated: position >= AX25_REPEATER_1 && ssidByte&SSID_H_MASK != 0,
	}
}

/*------------------------------------------------------------------------------
 *
 * Name:	Decode
 *
 * Purpose:	Split a raw AX.25 frame (no FCS) into its fields.
 *
 * Returns:	Packet, or *DecodeError wrapping one of:
 *
 *			ErrTruncatedAddress	- Fewer than two complete
 *						  addresses, or the address
 *						  chain ran off the end.
 *			ErrTooManyDigipeaters	- No end of address after 10.
 *			ErrMissingControlOrPid	- Fewer than 2 bytes after
 *						  the addresses.
 *			ErrInvalidUTF8Payload	- PID 0xF0 with information
 *						  that is not text.
 *
 * Description:	Addresses are taken 7 bytes at a time until one has
 *		its "last" bit set.
 *
 *------------------------------------------------------------------------------*/

func Decode(frame []byte) (*Ax25Packet, error) {
	var addrs = make([]Ax25Address, 0, AX25_MAX_ADDRS)
	var offset = 0
	var terminated = false

	for !terminated && offset+AX25_ADDR_LEN <= len(frame) {
		if len(addrs) == AX25_MAX_ADDRS {
			return nil, &DecodeError{Err: ErrTooManyDigipeaters, Frame: frame}
		}
		var a = DecodeAddress(frame[offset:offset+AX25_ADDR_LEN], len(addrs))
		offset += AX25_ADDR_LEN
		addrs = append(addrs, a)
		terminated = a.IsLast
	}

	if len(addrs) < AX25_MIN_ADDRS || !terminated {
		return nil, &DecodeError{Err: ErrTruncatedAddress, Frame: frame}
	}

	if len(frame)-offset < 2 {
		return nil, &DecodeError{Err: ErrMissingControlOrPid, Frame: frame}
	}

	var p = &Ax25Packet{
		Destination: addrs[AX25_DESTINATION],
		Source:      addrs[AX25_SOURCE],
		Digipeaters: addrs[AX25_REPEATER_1:],
		Control:     frame[offset],
		PID:         frame[offset+1],
		Payload:     append([]byte(nil), frame[offset+2:]...),
	}

	if p.PID == AX25_PID_NO_LAYER_3 && !utf8.Valid(p.Payload) {
		return nil, &DecodeError{Err: ErrInvalidUTF8Payload, Frame: frame}
	}

	return p, nil
}

/*------------------------------------------------------------------------------
 *
 * Name:	ParseAddress
 *
 * Purpose:	Parse address with optional ssid.
 *
 * Inputs:	in	- Input such as "WB2OSZ-15" or "n0call".
 *			  A trailing "*" sets WasDigipeated.
 *
 * Description:	Callsign is converted to upper case, must be 1 to 6
 *		letters and digits.  SSID, if present, 0 to 15.
 *
 *------------------------------------------------------------------------------*/

func ParseAddress(in string) (Ax25Address, error) {
	var a Ax25Address

	if strings.HasSuffix(in, "*") {
		a.WasDigipeated = true
		in = in[:len(in)-1]
	}

	var call, ssid, hasSSID = strings.Cut(in, "-")
	call = strings.ToUpper(call)

	if err := checkCallsign(call); err != nil {
		return a, err
	}
	a.Callsign = call

	if hasSSID {
		var n, err = strconv.Atoi(ssid)
		if err != nil || n < 0 || n > AX25_MAX_SSID {
			return a, fmt.Errorf("%w: %q", ErrInvalidSSID, ssid)
		}
		a.SSID = uint8(n) //nolint:gosec
	}

	return a, nil
}

func checkCallsign(call string) error {
	if len(call) < 1 || len(call) > AX25_MAX_CALL_LEN {
		return fmt.Errorf("%w: %q must be 1 to %d characters", ErrInvalidCallsign, call, AX25_MAX_CALL_LEN)
	}
	for _, c := range call {
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return fmt.Errorf("%w: %q has character %q", ErrInvalidCallsign, call, c)
		}
	}
	return nil
}

/*------------------------------------------------------------------------------
 *
 * Name:	EncodeAddress
 *
 * Purpose:	Build one 7 byte address field.
 *
 * Description:	Callsign upper cased, space padded to 6, each character
 *		shifted left one bit.  Last byte is 0x60 | SSID << 1 | last,
 *		plus the H bit if requested.
 *
 *------------------------------------------------------------------------------*/

func EncodeAddress(a Ax25Address) ([]byte, error) {
	var call = strings.ToUpper(a.Callsign)
	if err := checkCallsign(call); err != nil {
		return nil, err
	}
	if a.SSID > AX25_MAX_SSID {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSSID, a.SSID)
	}

	var field = make([]byte, AX25_ADDR_LEN)
	for i := range AX25_MAX_CALL_LEN {
		var c byte = ' '
		if i < len(call) {
			c = call[i]
		}
		field[i] = c << 1
	}

	var ssidByte = SSID_RR_MASK | a.SSID<<SSID_SSID_SHIFT
	if a.IsLast {
		ssidByte |= SSID_LAST_MASK
	}
	if a.WasDigipeated {
		ssidByte |= SSID_H_MASK
	}
	field[AX25_MAX_CALL_LEN] = ssidByte

	return field, nil
}

/*------------------------------------------------------------------------------
 *
 * Name:	Encode
 *
 * Purpose:	Inverse of Decode.
 *
 * Description:	The "last" bits are recomputed from the position in the
 *		chain so the caller doesn't have to get them right.
 *
 *------------------------------------------------------------------------------*/

func (p *Ax25Packet) Encode() ([]byte, error) {
	if len(p.Digipeaters) > AX25_MAX_REPEATERS {
		return nil, ErrTooManyDigipeaters
	}

	var addrs = make([]Ax25Address, 0, AX25_MIN_ADDRS+len(p.Digipeaters))
	addrs = append(addrs, p.Destination, p.Source)
	addrs = append(addrs, p.Digipeaters...)

	var frame = make([]byte, 0, len(addrs)*AX25_ADDR_LEN+2+len(p.Payload))
	for n, a := range addrs {
		a.IsLast = n == len(addrs)-1
		if n < AX25_REPEATER_1 {
			a.WasDigipeated = false
		}
		var field, err = EncodeAddress(a)
		if err != nil {
			return nil, fmt.Errorf("address %d: %w", n, err)
		}
		frame = append(frame, field...)
	}

	frame = append(frame, p.Control, p.PID)
	frame = append(frame, p.Payload...)

	return frame, nil
}

/*------------------------------------------------------------------------------
 *
 * Name:	EncodeUI
 *
 * Purpose:	Build the frame for a beacon we originate.
 *
 * Inputs:	source	- Our callsign and SSID.
 *		dest	- Destination, "APRS" if the callsign is empty.
 *		info	- Information part.
 *
 * Returns:	dest ++ source ++ 0x03 ++ 0xF0 ++ info
 *
 * Description:	Never has a digipeater path.  Source is the last address.
 *
 *------------------------------------------------------------------------------*/

const DEFAULT_DESTINATION = "APRS"

func EncodeUI(source Ax25Address, dest Ax25Address, info string) ([]byte, error) {
	if dest.Callsign == "" {
		dest = Ax25Address{Callsign: DEFAULT_DESTINATION} //nolint:exhaustruct
	}

	var p = Ax25Packet{
		Destination: dest,
		Source:      source,
		Control:     AX25_UI_FRAME,
		PID:         AX25_PID_NO_LAYER_3,
		Payload:     []byte(info),
	}

	return p.Encode()
}
