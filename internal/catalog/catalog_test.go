package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/mediaseed/internal/errors"
)

func TestDefaultCatalogLoads(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, SupportedVersion, c.Version)
	assert.Len(t, c.Wildlife, 15)
	assert.Len(t, c.WeatherConditions, 8)
	assert.Len(t, c.MoonPhases, 8)
	assert.Equal(t, []string{"720p", "1080p", "4K"}, c.ResolutionKeys())
	assert.Same(t, c, MustDefault())
}

func TestUndeterminedSexDecodesEmpty(t *testing.T) {
	t.Parallel()

	c := MustDefault()
	for _, s := range c.Wildlife {
		if s.Class == "coyote" {
			assert.Equal(t, []string{"", "male", "female"}, s.Sexes)
			return
		}
	}
	t.Fatal("coyote not in catalog")
}

func TestLookups(t *testing.T) {
	t.Parallel()

	c := MustDefault()

	r, err := c.Resolution("1080p")
	require.NoError(t, err)
	assert.Equal(t, 1920, r.Width)
	assert.InDelta(t, 2.0736, r.Megapixels, 1e-9)

	_, err = c.Resolution("8K")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	assert.True(t, c.IsWildlifeClass("deer"))
	assert.False(t, c.IsWildlifeClass("vehicle"))
	assert.Equal(t, []string{"Gator", "Tractor"}, c.Models("John Deere"))
	assert.Nil(t, c.Models("Tesla"))
	assert.Equal(t, "video/quicktime", c.Media.MimeTypes["mov"])
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "version: [1"},
		{"wrong version", "version: 2"},
		{"no wildlife", "version: 1\nwildlife: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryCatalog))
		})
	}
}
