package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:   	Latitude and longitude for the position beacon.
 *
 * Description: Conversion from the ways people like to write a
 *		position to the fixed width form of an APRS position
 *		report, and back.
 *
 *---------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidPosition = errors.New("invalid position")

type LatOrLong int

const (
	LAT LatOrLong = iota
	LON
)

func (w LatOrLong) String() string {
	if w == LAT {
		return "latitude"
	}
	return "longitude"
}

/*------------------------------------------------------------------
 *
 * Name:        LatitudeToStr
 *
 * Purpose:     Convert numeric latitude to string for transmission.
 *
 * Inputs:      dlat		- Floating point degrees.  Negative is south.
 * 		ambiguity	- If 1, 2, 3, or 4, blank out that many trailing digits.
 *
 * Returns:	String in format ddmm.mm[NS]
 *		Always exactly 8 characters.
 *		We must have exactly ddmm.mm and hemisphere because
 *		the APRS position report has fixed width fields.
 *
 *----------------------------------------------------------------*/

func LatitudeToStr(dlat float64, ambiguity int) string {
	if dlat < -90. {
		dlat = -90.
	}
	if dlat > 90. {
		dlat = 90.
	}

	var hemi byte = 'N'
	if dlat < 0 {
		dlat = -dlat
		hemi = 'S'
	}

	var ideg, smin = degreesMinutes(dlat)

	var slat = []byte(fmt.Sprintf("%02d%s%c", ideg, smin, hemi))
	blankAmbiguity(slat, 2, ambiguity)

	return string(slat)
}

/*------------------------------------------------------------------
 *
 * Name:        LongitudeToStr
 *
 * Purpose:     Convert numeric longitude to string for transmission.
 *
 * Returns:	String in format dddmm.mm[EW]
 *		Always exactly 9 characters.
 *
 * Description:	Position ambiguity in latitude also applies to
 *		longitude automatically.  Blanking longitude digits
 *		is not necessary but it makes things clearer.
 *
 *----------------------------------------------------------------*/

func LongitudeToStr(dlong float64, ambiguity int) string {
	if dlong < -180. {
		dlong = -180.
	}
	if dlong > 180. {
		dlong = 180.
	}

	var hemi byte = 'E'
	if dlong < 0 {
		dlong = -dlong
		hemi = 'W'
	}

	var ideg, smin = degreesMinutes(dlong)

	var slong = []byte(fmt.Sprintf("%03d%s%c", ideg, smin, hemi))
	blankAmbiguity(slong, 3, ambiguity)

	return string(slong)
}

// Whole degrees and "mm.mm" minutes of a non-negative angle.
func degreesMinutes(d float64) (int, string) {
	var ideg = int(d)
	var dmin = (d - float64(ideg)) * 60.

	var smin = fmt.Sprintf("%05.2f", dmin)
	/* Due to roundoff, 59.9999 could come out as "60.00" */
	if smin[0] == '6' {
		smin = "00.00"
		ideg++
	}
	return ideg, smin
}

// degDigits is 2 for latitude, 3 for longitude.
func blankAmbiguity(s []byte, degDigits int, ambiguity int) {
	var positions = []int{degDigits + 4, degDigits + 3, degDigits + 1, degDigits}
	for i := 0; i < ambiguity && i < len(positions); i++ {
		s[positions[i]] = ' '
	}
}

/*------------------------------------------------------------------
 *
 * Name:        ParseLatLong
 *
 * Purpose:     Parse latitude or longitude from configuration.
 *
 * Inputs:      str	- Any of these forms:
 *
 *				45.5253		decimal degrees, negative for S or W.
 *				45.5253N
 *				45^31.52N	degrees ^ minutes, hemisphere.
 *				45°31.52N
 *				-73^36.15
 *
 *		which	- LAT or LON, for range check and hemisphere letters.
 *
 *----------------------------------------------------------------*/

func ParseLatLong(str string, which LatOrLong) (float64, error) {
	var stemp = strings.TrimSpace(str)
	if stemp == "" {
		return 0, fmt.Errorf("%w: empty %s", ErrInvalidPosition, which)
	}

	var sign = 1.0
	if stemp[0] == '-' {
		stemp = stemp[1:]
		sign = -1
	}

	if len(stemp) >= 2 {
		var lastChar = rune(stemp[len(stemp)-1])

		if unicode.IsLetter(lastChar) {
			var hemi = unicode.ToUpper(lastChar)
			stemp = stemp[:len(stemp)-1]

			if hemi == 'W' || hemi == 'S' {
				sign = -sign
			}

			var ok = (which == LAT && (hemi == 'N' || hemi == 'S')) ||
				(which == LON && (hemi == 'E' || hemi == 'W'))
			if !ok {
				return 0, fmt.Errorf("%w: %s hemisphere in %q", ErrInvalidPosition, which, str)
			}
		}
	}

	var degreesStr = stemp
	var minutesStr string
	var minutesFound = false
	if strings.Contains(degreesStr, "^") {
		degreesStr, minutesStr, minutesFound = strings.Cut(stemp, "^")
	} else if strings.Contains(degreesStr, "°") {
		degreesStr, minutesStr, minutesFound = strings.Cut(stemp, "°")
	}

	var degrees, err = strconv.ParseFloat(degreesStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: degrees in %q", ErrInvalidPosition, str)
	}

	if minutesFound {
		var minutes, minErr = strconv.ParseFloat(minutesStr, 64)
		if minErr != nil || minutes < 0 || minutes >= 60.0 {
			return 0, fmt.Errorf("%w: minutes in %q", ErrInvalidPosition, str)
		}
		degrees += minutes / 60
	}

	degrees *= sign

	var limit = 90.0
	if which == LON {
		limit = 180.0
	}
	if degrees < -limit || degrees > limit {
		return 0, fmt.Errorf("%w: %q is out of range for %s", ErrInvalidPosition, str, which)
	}

	return degrees, nil
}

/*------------------------------------------------------------------
 *
 * Function:	LatLongFromGridSquare
 *
 * Purpose:	Convert Maidenhead locator to latitude and longitude.
 *
 * Inputs:	maidenhead	- 2, 4, 6, 8, 10, or 12 character grid square locator.
 *
 * Returns:	Latitude and longitude of the center of the square.
 *
 * Rambling:	For 8 character form, each latitude unit is 0.25 minute.
 *		(Longitude can be up to twice that around the equator.)
 *		That is about 460 m, plenty for a fixed station beacon.
 *
 *------------------------------------------------------------------*/

const MH_MIN_PAIR = 1
const MH_MAX_PAIR = 6
const MH_UNITS = (18 * 10 * 24 * 10 * 24 * 10 * 2)

type mhPair struct {
	position string
	min_ch   byte
	max_ch   byte
	value    int
}

var mhPairs = []mhPair{
	{"first", 'A', 'R', 10 * 24 * 10 * 24 * 10 * 2},
	{"second", '0', '9', 24 * 10 * 24 * 10 * 2},
	{"third", 'A', 'X', 10 * 24 * 10 * 2},
	{"fourth", '0', '9', 24 * 10 * 2},
	{"fifth", 'A', 'X', 10 * 2},
	{"sixth", '0', '9', 2},
} // Even so we can get center of square.

func LatLongFromGridSquare(maidenhead string) (float64, float64, error) {
	var np = len(maidenhead) / 2 /* Number of pairs of characters. */

	if len(maidenhead)%2 != 0 || np < MH_MIN_PAIR || np > MH_MAX_PAIR {
		return 0, 0, fmt.Errorf("%w: Maidenhead locator %q must be 1 to %d pairs of characters",
			ErrInvalidPosition, maidenhead, MH_MAX_PAIR)
	}

	var mh = strings.ToUpper(maidenhead)

	var ilat, ilon int
	for n := range np {
		var p = mhPairs[n]
		if mh[2*n] < p.min_ch || mh[2*n] > p.max_ch || mh[2*n+1] < p.min_ch || mh[2*n+1] > p.max_ch {
			return 0, 0, fmt.Errorf("%w: the %s pair of characters in Maidenhead locator %q must be in range of %c thru %c",
				ErrInvalidPosition, p.position, maidenhead, p.min_ch, p.max_ch)
		}

		ilon += int(mh[2*n]-p.min_ch) * p.value
		ilat += int(mh[2*n+1]-p.min_ch) * p.value

		if n == np-1 { // If last pair, take center of square.
			ilon += p.value / 2
			ilat += p.value / 2
		}
	}

	var dlat = float64(ilat)/MH_UNITS*180. - 90.
	var dlon = float64(ilon)/MH_UNITS*360. - 180.

	return dlat, dlon, nil
}
