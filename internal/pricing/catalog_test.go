package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalog = `
currency: eur
placements: [front]
material:
  cotton: { label: "Coton", price_cents: 100 }
shipping:
  free_threshold_cents: 3000
  free_option: standard
  rates:
    - { id: standard, name: "Standard", price_cents: 500, estimated_days: 5 }
    - { id: express, name: "Express", price_cents: 1000, estimated_days: 2 }
`

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, "eur", c.Currency)
	assert.Contains(t, c.Placements, "front")
	assert.Equal(t, []string{"100", "50", "75"}, c.OptionIDs(CategoryCoverage))
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "styles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalCatalog), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100), c.Material["cotton"].PriceCents)
	assert.Empty(t, c.Coverage)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseCatalogRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"negative price": `
currency: eur
material:
  cotton: { label: "Coton", price_cents: -5 }
shipping:
  rates: [{ id: standard, price_cents: 500 }]
`,
		"no currency": `
shipping:
  rates: [{ id: standard, price_cents: 500 }]
`,
		"no shipping": `currency: eur`,
		"duplicate rate": `
currency: eur
shipping:
  rates: [{ id: standard, price_cents: 500 }, { id: standard, price_cents: 600 }]
`,
		"unknown free option": `
currency: eur
shipping:
  free_option: drone
  rates: [{ id: standard, price_cents: 500 }]
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestShippingOptions(t *testing.T) {
	c, err := ParseCatalog([]byte(minimalCatalog))
	require.NoError(t, err)

	calc := c.ShippingOptions(2999)
	assert.False(t, calc.IsFree)
	assert.Equal(t, int64(500), calc.Options[0].PriceCents)

	calc = c.ShippingOptions(3000)
	assert.True(t, calc.IsFree)
	assert.Equal(t, int64(0), calc.Options[0].PriceCents)
	assert.Equal(t, int64(1000), calc.Options[1].PriceCents)

	opt, err := c.QuoteShipping("", 100)
	require.NoError(t, err)
	assert.Equal(t, "standard", opt.ID)

	opt, err = c.QuoteShipping("express", 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), opt.PriceCents)

	_, err = c.QuoteShipping("drone", 100)
	assert.ErrorIs(t, err, ErrUnknownShipping)
}
