package kissgate

/*------------------------------------------------------------------
 *
 * Purpose:	Check a beacon position before putting it in the
 *		configuration file.
 *
 * Description:	The position can be given in any form the beacon
 *		section accepts.  It is shown in all the others and as
 *		the beacon information part that would be transmitted.
 *
 *		kissgate-position 42.662139 -71.365553
 *		kissgate-position --grid FN42ni
 *		kissgate-position --utm "19T 306130 4726010"
 *		kissgate-position --mgrs 19TCH06132600
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func PositionMain() {
	os.Exit(PositionRun(os.Args[1:], os.Stdout, os.Stderr))
}

func PositionRun(args []string, stdout io.Writer, stderr io.Writer) int {
	var flags = pflag.NewFlagSet("kissgate-position", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var b BeaconConfig
	flags.StringVar(&b.Grid, "grid", "", "Maidenhead grid square, 2 to 12 characters.")
	flags.StringVar(&b.UTM, "utm", "", "UTM as \"zone easting northing\".")
	flags.StringVar(&b.MGRS, "mgrs", "", "MGRS or USNG.")
	flags.IntVarP(&b.Ambiguity, "ambiguity", "a", 0, "Position ambiguity, 0 to 4 digits removed.")
	flags.StringVarP(&b.Icon, "icon", "i", DEFAULT_ICON, "Beacon icon.")
	flags.StringVar(&b.Message, "message", "", "Beacon comment.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "kissgate-position - show a beacon position in every form.\n\n")
		fmt.Fprintf(stderr, "Usage: kissgate-position [options] [latitude longitude]\n\n")
		fmt.Fprintf(stderr, "Latitude and longitude in decimal degrees, negative for south or west,\n")
		fmt.Fprintf(stderr, "or degrees and minutes with hemisphere, e.g. 42^37.72N 71^21.93W.\n\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *help {
		flags.Usage()
		return 0
	}

	switch flags.NArg() {
	case 0:
	case 2:
		b.Latitude = flags.Arg(0)
		b.Longitude = flags.Arg(1)
	default:
		flags.Usage()
		return 2
	}

	var lat, lon, err = b.Position()
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Decimal   = %.6f %.6f\n", lat, lon)
	fmt.Fprintf(stdout, "APRS      = %s %s\n", LatitudeToStr(lat, b.Ambiguity), LongitudeToStr(lon, b.Ambiguity))

	var utm, utmErr = UTMFromLatLong(lat, lon)
	if utmErr == nil {
		fmt.Fprintf(stdout, "UTM       = %s\n", utm)
		if detail, err := UTMDetail(lat, lon); err == nil {
			fmt.Fprintf(stdout, "            %s\n", detail)
		}
	} else {
		fmt.Fprintf(stdout, "UTM       : %s\n", utmErr)
		// Others could still succeed, keep going.
	}

	fmt.Fprintf(stdout, "MGRS      =")
	for precision := 1; precision <= 5; precision++ {
		var mgrs, mgrsErr = MGRSFromLatLong(lat, lon, precision)
		if mgrsErr != nil {
			fmt.Fprintf(stdout, " %s", mgrsErr)
			break
		}
		fmt.Fprintf(stdout, "  %s", mgrs)
	}
	fmt.Fprintf(stdout, "\n")

	var icon, iconErr = b.SymbolIcon()
	if iconErr != nil {
		fmt.Fprintf(stderr, "%s\n", iconErr)
		return 1
	}
	fmt.Fprintf(stdout, "Beacon    = %s\n", BeaconPayload(lat, lon, b.Ambiguity, icon, b.Message))

	return 0
}
