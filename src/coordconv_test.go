package kissgate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tzneal/coordconv"
)

func TestLatLongFromUTM(t *testing.T) {
	var lat, lon, err = LatLongFromUTM("19T 306130 4726010")

	require.NoError(t, err)
	assert.InDelta(t, 42.662139, lat, 0.00001)
	assert.InDelta(t, -71.365553, lon, 0.00001)
}

func TestLatLongFromUTM_NoBand(t *testing.T) {
	var lat, lon, err = LatLongFromUTM("19 306130 4726010")

	require.NoError(t, err)
	assert.InDelta(t, 42.662139, lat, 0.00001)
	assert.InDelta(t, -71.365553, lon, 0.00001)
}

func TestLatLongFromUTM_Errors(t *testing.T) {
	for _, utm := range []string{"", "19T 306130", "19I 306130 4726010", "19T east 4726010", "xx 306130 4726010", "61T 306130 4726010"} {
		t.Run(utm, func(t *testing.T) {
			var _, _, err = LatLongFromUTM(utm)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}
}

func TestLatLongFromMGRS(t *testing.T) {
	for _, mgrs := range []string{"19TCH06132600", "19T CH 0613 2600"} {
		t.Run(mgrs, func(t *testing.T) {
			var lat, lon, err = LatLongFromMGRS(mgrs)
			require.NoError(t, err)
			assert.InDelta(t, 42.66205, lat, 0.0001)
			assert.InDelta(t, -71.36555, lon, 0.0001)
		})
	}

	var _, _, err = LatLongFromMGRS("not mgrs")
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestUTMFromLatLong(t *testing.T) {
	var utm, err = UTMFromLatLong(42.662139, -71.365553)
	require.NoError(t, err)
	assert.Equal(t, "19T 306130 4726010", utm)

	// Southern hemisphere comes back the same way.
	utm, err = UTMFromLatLong(-33.8688, 151.2093)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(utm, "56H "), utm)

	var lat, lon float64
	lat, lon, err = LatLongFromUTM(utm)
	require.NoError(t, err)
	assert.InDelta(t, -33.8688, lat, 0.0001)
	assert.InDelta(t, 151.2093, lon, 0.0001)
}

func TestMGRSFromLatLong(t *testing.T) {
	var mgrs, err = MGRSFromLatLong(42.662139, -71.365553, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mgrs, "19TCH"), mgrs)

	var lat, lon float64
	lat, lon, err = LatLongFromMGRS(mgrs)
	require.NoError(t, err)
	assert.InDelta(t, 42.662139, lat, 0.0001)
	assert.InDelta(t, -71.365553, lon, 0.0001)
}

func TestUTMDetail(t *testing.T) {
	var detail, err = UTMDetail(42.662139, -71.365553)
	require.NoError(t, err)
	assert.Equal(t, "zone = 19, hemisphere = N, easting = 306130, northing = 4726010", detail)

	detail, err = UTMDetail(-33.8688, 151.2093)
	require.NoError(t, err)
	assert.Contains(t, detail, "zone = 56, hemisphere = S,")

	_, err = UTMDetail(89.9, 0)
	assert.ErrorIs(t, err, ErrInvalidPosition)
}

func TestHemisphereToRune(t *testing.T) {
	assert.Equal(t, 'N', HemisphereToRune(coordconv.HemisphereNorth))
	assert.Equal(t, 'S', HemisphereToRune(coordconv.HemisphereSouth))
	assert.Equal(t, '!', HemisphereToRune(coordconv.HemisphereInvalid))
}

func TestUTMLatitudeBand(t *testing.T) {
	assert.Equal(t, byte('C'), utmLatitudeBand(-80))
	assert.Equal(t, byte('T'), utmLatitudeBand(42.66))
	assert.Equal(t, byte('N'), utmLatitudeBand(0))
	assert.Equal(t, byte('M'), utmLatitudeBand(-0.1))
	assert.Equal(t, byte('X'), utmLatitudeBand(83))
}
