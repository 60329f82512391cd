package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	AX.25 frame check sequence.
 *
 * Description:	The FCS is CRC-16/X.25: polynomial 0x1021 processed
 *		LSB first (0x8408 reflected), preset to 0xFFFF and
 *		complemented.  It is sent low byte first.
 *
 *		Running the same CRC over a frame plus its own correct
 *		FCS always leaves the same value in the shift register.
 *		Held MSB first that is 0x1D0F (0xF0B8 in the LSB first
 *		form used by HDLC hardware).  Checking for it avoids having to know
 *		where the FCS starts.
 *
 *		A KISS TNC has already checked and removed the FCS so
 *		decoding never depends on this.  It is here for tools
 *		and for TNCs that pass the FCS through.
 *
 *------------------------------------------------------------------*/

import (
	"math/bits"

	"github.com/sigurn/crc16"
)

const FCS_LEN = 2

// Register value after running over data followed by its correct FCS.
const FCS_GOOD_RESIDUE uint16 = 0x1D0F

var fcsTable = crc16.MakeTable(crc16.CRC16_X_25)

// FCSCalc computes the frame check sequence for a frame without FCS.
func FCSCalc(frame []byte) uint16 {
	var crc = crc16.Init(fcsTable)
	crc = crc16.Update(crc, frame, fcsTable)
	return crc16.Complete(crc, fcsTable)
}

// AppendFCS returns a copy of frame with its FCS added, low byte first.
func AppendFCS(frame []byte) []byte {
	var fcs = FCSCalc(frame)
	var out = make([]byte, 0, len(frame)+FCS_LEN)
	out = append(out, frame...)
	return append(out, byte(fcs&0xff), byte(fcs>>8))
}

/*------------------------------------------------------------------
 *
 * Function:	FCSValid
 *
 * Purpose:	Check a frame that still carries its trailing FCS.
 *
 * Returns:	true if the CRC over everything, FCS included, gives
 *		the expected residue.
 *
 *------------------------------------------------------------------*/

func FCSValid(frameWithFCS []byte) bool {
	if len(frameWithFCS) < FCS_LEN {
		return false
	}
	return fcsResidue(frameWithFCS) == FCS_GOOD_RESIDUE
}

// fcsResidue undoes the output complement and reflection to get back to
// the MSB first register.
func fcsResidue(data []byte) uint16 {
	return bits.Reverse16(FCSCalc(data) ^ 0xFFFF)
}

// StripFCS checks and removes the FCS.
func StripFCS(frameWithFCS []byte) ([]byte, bool) {
	if !FCSValid(frameWithFCS) {
		return nil, false
	}
	return frameWithFCS[:len(frameWithFCS)-FCS_LEN], true
}
