package kissgate

// Beacon position from UTM or MGRS, using https://github.com/tzneal/coordconv

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/tzneal/coordconv"
)

const UTM_LATITUDE_BANDS = "CDEFGHJKLMNPQRSTUVWX"

/*------------------------------------------------------------------
 *
 * Name:        parseUTMZone
 *
 * Purpose:     Parse UTM zone.
 *
 * Inputs:      szone	- String like "19" or "19T".
 *
 * Returns:	Zone number and hemisphere.  Without a latitude band
 *		the northern hemisphere is assumed.
 *
 *----------------------------------------------------------------*/

func parseUTMZone(szone string) (int, coordconv.Hemisphere, error) {
	var hemisphere = coordconv.HemisphereNorth

	szone = strings.ToUpper(szone)
	if len(szone) > 0 {
		var zlet = szone[len(szone)-1]
		if zlet >= 'A' && zlet <= 'Z' {
			if !strings.ContainsRune(UTM_LATITUDE_BANDS, rune(zlet)) {
				return 0, coordconv.HemisphereInvalid, fmt.Errorf("%w: latitudinal band %q must be one of %s",
					ErrInvalidPosition, zlet, UTM_LATITUDE_BANDS)
			}
			if zlet < 'N' {
				hemisphere = coordconv.HemisphereSouth
			}
			szone = szone[:len(szone)-1]
		}
	}

	var zone, err = strconv.Atoi(szone)
	if err != nil || zone < 1 || zone > 60 {
		return 0, coordconv.HemisphereInvalid, fmt.Errorf("%w: UTM zone %q must be 1 thru 60", ErrInvalidPosition, szone)
	}

	return zone, hemisphere, nil
}

/*------------------------------------------------------------------
 *
 * Name:        LatLongFromUTM
 *
 * Inputs:      utm	- "zone easting northing", e.g. "19T 306130 4726010".
 *
 *----------------------------------------------------------------*/

func LatLongFromUTM(utm string) (float64, float64, error) {
	var fields = strings.Fields(utm)
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("%w: UTM %q must be zone easting northing", ErrInvalidPosition, utm)
	}

	var zone, hemisphere, err = parseUTMZone(fields[0])
	if err != nil {
		return 0, 0, err
	}

	var easting, eErr = strconv.ParseFloat(fields[1], 64)
	var northing, nErr = strconv.ParseFloat(fields[2], 64)
	if eErr != nil || nErr != nil {
		return 0, 0, fmt.Errorf("%w: UTM easting and northing in %q must be meters", ErrInvalidPosition, utm)
	}

	var latlng, utmErr = coordconv.DefaultUTMConverter.ConvertToGeodetic(coordconv.UTMCoord{
		Zone:       zone,
		Hemisphere: hemisphere,
		Easting:    easting,
		Northing:   northing,
	})
	if utmErr != nil {
		return 0, 0, fmt.Errorf("%w: conversion from UTM failed: %w", ErrInvalidPosition, utmErr)
	}

	return checkedDegrees(latlng)
}

// LatLongFromMGRS accepts MGRS or USNG, e.g. "19TCH06132600".
func LatLongFromMGRS(mgrs string) (float64, float64, error) {
	var latlng, err = coordconv.DefaultMGRSConverter.ConvertToGeodetic(strings.ReplaceAll(mgrs, " ", ""))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: conversion from MGRS failed: %w", ErrInvalidPosition, err)
	}

	return checkedDegrees(latlng)
}

func checkedDegrees(ll s2.LatLng) (float64, float64, error) {
	if !ll.IsValid() {
		return 0, 0, fmt.Errorf("%w: converted position %s is out of range", ErrInvalidPosition, ll)
	}
	return ll.Lat.Degrees(), ll.Lng.Degrees(), nil
}

func HemisphereToRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	case coordconv.HemisphereInvalid:
		return '!'
	default:
		return '?'
	}
}

// UTMFromLatLong is the reverse of LatLongFromUTM, with the same "zone easting northing" layout.
func UTMFromLatLong(lat float64, lon float64) (string, error) {
	var utm, err = coordconv.DefaultUTMConverter.ConvertFromGeodetic(s2.LatLngFromDegrees(lat, lon), 0)
	if err != nil {
		return "", fmt.Errorf("%w: conversion to UTM failed: %w", ErrInvalidPosition, err)
	}
	return fmt.Sprintf("%d%c %.0f %.0f", utm.Zone, utmLatitudeBand(lat), utm.Easting, utm.Northing), nil
}

// UTMDetail spells out the parts, as in "zone = 19, hemisphere = N, easting = 306130, northing = 4726010".
func UTMDetail(lat float64, lon float64) (string, error) {
	var utm, err = coordconv.DefaultUTMConverter.ConvertFromGeodetic(s2.LatLngFromDegrees(lat, lon), 0)
	if err != nil {
		return "", fmt.Errorf("%w: conversion to UTM failed: %w", ErrInvalidPosition, err)
	}
	return fmt.Sprintf("zone = %d, hemisphere = %c, easting = %.0f, northing = %.0f",
		utm.Zone, HemisphereToRune(utm.Hemisphere), utm.Easting, utm.Northing), nil
}

// 8 degree bands from 80S.  X is stretched to 84N.
func utmLatitudeBand(lat float64) byte {
	var i = int(math.Floor((lat + 80) / 8))
	i = max(0, min(i, len(UTM_LATITUDE_BANDS)-1))
	return UTM_LATITUDE_BANDS[i]
}

// MGRSFromLatLong with precision 1 (10 km) to 5 (1 m).
func MGRSFromLatLong(lat float64, lon float64, precision int) (string, error) {
	var mgrs, err = coordconv.DefaultMGRSConverter.ConvertFromGeodetic(s2.LatLngFromDegrees(lat, lon), precision)
	if err != nil {
		return "", fmt.Errorf("%w: conversion to MGRS failed: %w", ErrInvalidPosition, err)
	}
	return fmt.Sprint(mgrs), nil
}
