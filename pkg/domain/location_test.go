package domain_test

import (
	"mapslinks/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewCoordinates_RoundsToSevenDecimals(t *testing.T) {
	c := domain.NewCoordinates(40.712812345678, -74.00601234567)
	require.Equal(t, 40.7128123, c.Latitude)
	require.Equal(t, -74.0060123, c.Longitude)

	require.Equal(t, 40.7128, domain.RoundCoordinate(40.7128000))
}

func TestEncodeLocations_OmitsAbsentFields(t *testing.T) {
	c := domain.NewCoordinates(40.7128, -74.006)
	out := domain.EncodeLocations([]domain.ResolvedLocation{
		{
			OriginalLink: "https://maps.app.goo.gl/ok",
			FinalURL:     "https://www.google.com/maps/@40.7128,-74.006,15z",
			Coordinates:  &c,
		},
		{
			OriginalLink: "https://maps.app.goo.gl/plain",
			FinalURL:     "https://www.google.com/maps",
		},
		{
			OriginalLink: "https://maps.app.goo.gl/bad-link",
			Error:        "NavigationError: timeout",
		},
	})

	require.JSONEq(t, `[
		{"originalLink":"https://maps.app.goo.gl/ok","finalUrl":"https://www.google.com/maps/@40.7128,-74.006,15z","latitude":40.7128,"longitude":-74.006},
		{"originalLink":"https://maps.app.goo.gl/plain","finalUrl":"https://www.google.com/maps"},
		{"originalLink":"https://maps.app.goo.gl/bad-link","error":"NavigationError: timeout"}
	]`, string(out))
}

func TestEncodeLocations_Empty(t *testing.T) {
	require.Equal(t, "[]", string(domain.EncodeLocations(nil)))
}

func TestDecodeLocations(t *testing.T) {
	in := `[
		{"originalLink":"a","finalUrl":"https://x/@1.5,2.5","latitude":1.5,"longitude":2.5,"extra":{"ignored":true}},
		{"originalLink":"b","latitude":null,"longitude":null,"error":"BrowserError: tab crashed"}
	]`

	got, err := domain.DecodeLocations([]byte(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "a", got[0].OriginalLink)
	require.True(t, got[0].HasCoordinates())
	require.Equal(t, domain.Coordinates{Latitude: 1.5, Longitude: 2.5}, *got[0].Coordinates)

	require.Equal(t, "b", got[1].OriginalLink)
	require.False(t, got[1].HasCoordinates())
	require.True(t, got[1].Failed())
}

func TestDecodeLocations_Invalid(t *testing.T) {
	cases := map[string]string{
		"not an array":       `{"originalLink":"a"}`,
		"missing link":       `[{"finalUrl":"https://x"}]`,
		"latitude only":      `[{"originalLink":"a","latitude":1}]`,
		"wrong type":         `[{"originalLink":"a","latitude":"north","longitude":2}]`,
		"truncated document": `[{"originalLink":"a"`,
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := domain.DecodeLocations([]byte(in))
			require.Error(t, err)
		})
	}
}
