package kissgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLatitudeToStr(t *testing.T) {
	tests := []struct {
		name      string
		lat       float64
		ambiguity int
		expected  string
	}{
		{"north", 42.5, 0, "4230.00N"},
		{"south", -33.8688, 0, "3352.13S"},
		{"equator", 0, 0, "0000.00N"},
		{"minutes round up to next degree", 42.9999999, 0, "4300.00N"},
		{"beyond pole is clamped", 95, 0, "9000.00N"},
		{"ambiguity 1", 42.5, 1, "4230.0 N"},
		{"ambiguity 2", 42.5, 2, "4230.  N"},
		{"ambiguity 3", 42.5, 3, "423 .  N"},
		{"ambiguity 4", 42.5, 4, "42  .  N"},
		{"ambiguity too big", 42.5, 9, "42  .  N"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LatitudeToStr(tt.lat, tt.ambiguity))
		})
	}
}

func TestLongitudeToStr(t *testing.T) {
	tests := []struct {
		name      string
		lon       float64
		ambiguity int
		expected  string
	}{
		{"west", -71.0, 0, "07100.00W"},
		{"east", 151.2093, 0, "15112.56E"},
		{"philadelphia", -73.6025, 0, "07336.15W"},
		{"clamped", -200, 0, "18000.00W"},
		{"ambiguity 2", -71.0, 2, "07100.  W"},
		{"ambiguity 4", -71.0, 4, "071  .  W"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LongitudeToStr(tt.lon, tt.ambiguity))
		})
	}
}

func TestLatLongStr_FixedWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var lat = rapid.Float64Range(-90, 90).Draw(t, "lat")
		var lon = rapid.Float64Range(-180, 180).Draw(t, "lon")
		var ambiguity = rapid.IntRange(0, 4).Draw(t, "ambiguity")

		assert.Len(t, LatitudeToStr(lat, ambiguity), 8)
		assert.Len(t, LongitudeToStr(lon, ambiguity), 9)
	})
}

func TestParseLatLong(t *testing.T) {
	tests := []struct {
		in       string
		which    LatOrLong
		expected float64
	}{
		{"45.5253", LAT, 45.5253},
		{"-73.6025", LON, -73.6025},
		{"45.5253N", LAT, 45.5253},
		{"45.5253s", LAT, -45.5253},
		{"73.6025W", LON, -73.6025},
		{"45^31.52N", LAT, 45 + 31.52/60},
		{"45°31.52N", LAT, 45 + 31.52/60},
		{"073^36.15W", LON, -(73 + 36.15/60)},
		{"-73^36.15", LON, -(73 + 36.15/60)},
		{" 10 ", LAT, 10},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got, err = ParseLatLong(tt.in, tt.which)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 0.000001)
		})
	}
}

func TestParseLatLong_Errors(t *testing.T) {
	tests := []struct {
		in    string
		which LatOrLong
	}{
		{"", LAT},
		{"abc", LAT},
		{"45.5E", LAT},
		{"73.6N", LON},
		{"91", LAT},
		{"181W", LON},
		{"45^60N", LAT},
		{"45^xxN", LAT},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var _, err = ParseLatLong(tt.in, tt.which)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}
}

func TestLatLongFromGridSquare(t *testing.T) {
	tests := []struct {
		grid string
		lat  float64
		lon  float64
	}{
		{"FN", 45, -70},
		{"FN42", 42.5, -71},
		{"fn42", 42.5, -71},
		{"FN42ni", 42.354167, -70.875},
		{"JJ00aa", 0.020833, 0.041667},
	}

	for _, tt := range tests {
		t.Run(tt.grid, func(t *testing.T) {
			var lat, lon, err = LatLongFromGridSquare(tt.grid)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, lat, 0.0001)
			assert.InDelta(t, tt.lon, lon, 0.0001)
		})
	}
}

func TestLatLongFromGridSquare_Errors(t *testing.T) {
	for _, grid := range []string{"", "F", "FN4", "SN42", "FNA2", "FN42zz", "FN42ni00aa00bb"} {
		t.Run(grid, func(t *testing.T) {
			var _, _, err = LatLongFromGridSquare(grid)
			assert.ErrorIs(t, err, ErrInvalidPosition)
		})
	}
}
