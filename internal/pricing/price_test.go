package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/models"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func TestCalculateItemPrice_NoCustomization(t *testing.T) {
	c := mustDefault(t)

	p, err := c.CalculateItemPrice(1250, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), p.UnitCents)
	assert.Equal(t, int64(0), p.AddOnCents)
	assert.Equal(t, int64(3750), p.TotalCents)
	require.Len(t, p.Breakdown, 1)
	assert.Equal(t, CategoryBase, p.Breakdown[0].Category)
}

func TestCalculateItemPrice_AllCategories(t *testing.T) {
	c := mustDefault(t)

	cust := &models.Customization{
		Placement: "left_chest",
		Size:      "m",
		Color:     "navy",
		Styles: models.StyleSelection{
			Coverage: "75",
			Material: "felt",
			Border:   "heat_cut",
			Backing:  "velcro",
			Cutting:  "contour",
			Threads:  []string{"metallic_gold", "neon"},
			Upgrades: []string{"puff_3d"},
		},
	}

	p, err := c.CalculateItemPrice(1000, cust, 2)
	require.NoError(t, err)

	// 300 + 200 + 100 + 50 + 180 + 120 + 90 + 60 + 250
	assert.Equal(t, int64(1350), p.AddOnCents)
	assert.Equal(t, int64(2350), p.UnitCents)
	assert.Equal(t, int64(4700), p.TotalCents)

	categories := make([]string, 0, len(p.Breakdown))
	for _, comp := range p.Breakdown {
		categories = append(categories, comp.Category)
	}
	assert.Equal(t, []string{
		CategoryBase, CategorySize, CategoryCoverage, CategoryMaterial, CategoryBorder,
		CategoryBacking, CategoryCutting, CategoryThreads, CategoryThreads, CategoryUpgrades,
	}, categories)
}

func TestCalculateItemPrice_MissingCategoriesContributeZero(t *testing.T) {
	c := mustDefault(t)

	p, err := c.CalculateItemPrice(800, &models.Customization{Styles: models.StyleSelection{Backing: "iron_on"}}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(880), p.UnitCents)
	assert.Len(t, p.Breakdown, 2)
}

func TestCalculateItemPrice_DuplicateThreadsCountOnce(t *testing.T) {
	c := mustDefault(t)

	cust := &models.Customization{Styles: models.StyleSelection{
		Threads:  []string{"glow", " glow", "glow", ""},
		Upgrades: []string{"rush", "rush"},
	}}
	p, err := c.CalculateItemPrice(0, cust, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(120+500), p.UnitCents)
}

func TestCalculateItemPrice_Errors(t *testing.T) {
	c := mustDefault(t)

	_, err := c.CalculateItemPrice(100, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = c.CalculateItemPrice(-1, nil, 1)
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = c.CalculateItemPrice(100, &models.Customization{Styles: models.StyleSelection{Material: "gold"}}, 1)
	var unknown *UnknownOptionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, CategoryMaterial, unknown.Category)
	assert.Equal(t, "gold", unknown.Option)

	_, err = c.CalculateItemPrice(100, &models.Customization{Placement: "forehead"}, 1)
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, CategoryPlacement, unknown.Category)

	_, err = c.CalculateItemPrice(100, &models.Customization{Styles: models.StyleSelection{Upgrades: []string{"teleport"}}}, 1)
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, CategoryUpgrades, unknown.Category)
}

func TestNormalize(t *testing.T) {
	n := Normalize(models.Customization{
		Placement: "  back ",
		Styles: models.StyleSelection{
			Threads: []string{"neon", "glow", "neon"},
		},
	})
	assert.Equal(t, "back", n.Placement)
	assert.Equal(t, []string{"neon", "glow"}, n.Styles.Threads)
	assert.Nil(t, n.Styles.Upgrades)
}

func TestSummarize(t *testing.T) {
	count, subtotal := Summarize([]models.CartItem{
		{Quantity: 2, UnitPriceCents: 500},
		{Quantity: 1, UnitPriceCents: 1999},
	})
	assert.Equal(t, 3, count)
	assert.Equal(t, int64(2999), subtotal)

	count, subtotal = Summarize(nil)
	assert.Zero(t, count)
	assert.Zero(t, subtotal)
}
