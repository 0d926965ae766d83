package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patchwork_back_end/internal/logger"
	"patchwork_back_end/internal/models"
	"patchwork_back_end/internal/pricing"
	"patchwork_back_end/internal/repository/repotest"
)

type fakeDesigns map[string]string // ref → userID

func (f fakeDesigns) OwnsDesign(_ context.Context, ref, userID string) bool { return f[ref] == userID }

type fixture struct {
	svc      *Service
	store    *Store
	client   *redis.Client
	mr       *miniredis.Miniredis
	products *repotest.Store

	patch gocql.UUID // personnalisable, 10,00 €
	mug   gocql.UUID // non personnalisable, 12,50 €
	gone  gocql.UUID // inactif
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	catalog, err := pricing.DefaultCatalog()
	require.NoError(t, err)

	f := &fixture{client: client, mr: mr, products: repotest.New()}
	f.patch = f.products.AddProduct(models.Product{Name: "Écusson brodé", PriceCents: 1000, Customizable: true, IsActive: true})
	f.mug = f.products.AddProduct(models.Product{Name: "Mug", PriceCents: 1250, IsActive: true, ImageURLs: []string{"mug.png"}})
	f.gone = f.products.AddProduct(models.Product{Name: "Ancien", PriceCents: 500, Customizable: true})

	f.store = NewStore(client, time.Hour)
	designs := fakeDesigns{"designs/u1/logo.png": "u1"}
	f.svc = NewService(f.store, f.products, catalog, designs, Limits{MaxQuantity: 100, MaxLines: 3}, logger.Nop())
	return f
}

func TestAddComputesPriceServerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Add(ctx, "u1", AddInput{
		ProductID: f.patch.String(),
		Quantity:  2,
		Customization: &models.Customization{
			Placement: "front",
			Styles: models.StyleSelection{
				Material: "felt",
				Threads:  []string{"neon", "glow"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	item := c.Items[0]
	assert.Equal(t, int64(1000+100+60+120), item.UnitPriceCents)
	assert.Equal(t, models.ReviewDraft, item.ReviewStatus)
	assert.NotEmpty(t, item.LineID)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, int64(2*1280), c.SubtotalCents)

	assert.True(t, f.mr.Exists("cart:u1"))
	assert.Equal(t, time.Hour, f.mr.TTL("cart:u1"))
}

func TestAddMergesIdenticalCustomization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	add := func(threads ...string) *models.Cart {
		c, err := f.svc.Add(ctx, "u1", AddInput{
			ProductID:     f.patch.String(),
			Quantity:      1,
			Customization: &models.Customization{Styles: models.StyleSelection{Threads: threads}},
		})
		require.NoError(t, err)
		return c
	}

	add("neon", "glow")
	c := add("glow", "neon", "glow")
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)

	c = add("neon")
	assert.Len(t, c.Items, 2)
}

func TestAddPlainProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "mug.png", c.Items[0].ImageURL)
	assert.Nil(t, c.Items[0].Customization)

	// Une personnalisation vide équivaut à aucune personnalisation
	c, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 1, Customization: &models.Customization{Notes: "  "}})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAddErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]struct {
		in   AddInput
		want error
	}{
		"zero quantity":     {AddInput{ProductID: f.mug.String(), Quantity: 0}, ErrInvalidQuantity},
		"over limit":        {AddInput{ProductID: f.mug.String(), Quantity: 101}, ErrQuantityLimit},
		"bad id":            {AddInput{ProductID: "nope", Quantity: 1}, ErrProductNotFound},
		"unknown product":   {AddInput{ProductID: gocql.TimeUUID().String(), Quantity: 1}, ErrProductNotFound},
		"inactive product":  {AddInput{ProductID: f.gone.String(), Quantity: 1}, ErrProductNotFound},
		"not customizable":  {AddInput{ProductID: f.mug.String(), Quantity: 1, Customization: &models.Customization{Size: "m"}}, ErrNotCustomizable},
		"design of another": {AddInput{ProductID: f.patch.String(), Quantity: 1, Customization: &models.Customization{DesignRef: "designs/u2/x.png"}}, ErrDesignNotOwned},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Add(ctx, "u1", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.svc.Add(ctx, "u1", AddInput{
		ProductID:     f.patch.String(),
		Quantity:      1,
		Customization: &models.Customization{Styles: models.StyleSelection{Backing: "glue"}},
	})
	var unknown *pricing.UnknownOptionError
	assert.ErrorAs(t, err, &unknown)

	assert.False(t, f.mr.Exists("cart:u1"))
}

func TestAddOwnedDesign(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Add(context.Background(), "u1", AddInput{
		ProductID:     f.patch.String(),
		Quantity:      1,
		Customization: &models.Customization{DesignRef: "designs/u1/logo.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "designs/u1/logo.png", c.Items[0].Customization.DesignRef)
}

func TestLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 60})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 60})
	assert.ErrorIs(t, err, ErrQuantityLimit)

	for _, size := range []string{"s", "m"} {
		_, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.patch.String(), Quantity: 1, Customization: &models.Customization{Size: size}})
		require.NoError(t, err)
	}
	_, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.patch.String(), Quantity: 1, Customization: &models.Customization{Size: "l"}})
	assert.ErrorIs(t, err, ErrTooManyLines)

	c, err := f.svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 3)
	assert.Equal(t, 62, c.Count)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 1})
	require.NoError(t, err)
	line := c.Items[0].LineID

	c, err = f.svc.UpdateQuantity(ctx, "u1", line, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, int64(5000), c.SubtotalCents)

	_, err = f.svc.UpdateQuantity(ctx, "u1", line, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = f.svc.UpdateQuantity(ctx, "u1", "missing", 2)
	assert.ErrorIs(t, err, ErrLineNotFound)

	c, err = f.svc.UpdateQuantity(ctx, "u1", line, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.False(t, f.mr.Exists("cart:u1"))

	_, err = f.svc.Remove(ctx, "u1", line)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.svc.Clear(ctx, "u1"))

	c, err := f.svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Zero(t, c.SubtotalCents)
}

func TestQuote(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Quote(context.Background(), f.patch.String(), &models.Customization{
		Styles: models.StyleSelection{Upgrades: []string{"rush"}},
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), p.UnitCents)
	assert.Equal(t, int64(4500), p.TotalCents)
	assert.False(t, f.mr.Exists("cart:"))
}

func TestUpdateRetriesOnConcurrentWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attempts := 0
	items, err := f.store.Update(ctx, "u1", func(items []models.CartItem) ([]models.CartItem, error) {
		attempts++
		if attempts == 1 {
			// un autre écrivain passe entre WATCH et EXEC
			require.NoError(t, f.client.Set(ctx, "cart:u1", `[{"line_id":"other","quantity":1}]`, 0).Err())
		}
		return append(items, models.CartItem{LineID: "mine", Quantity: 1}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	require.Len(t, items, 2)
	assert.Equal(t, "other", items[0].LineID)
}

func TestUpdateConflictAfterRetries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Update(ctx, "u1", func(items []models.CartItem) ([]models.CartItem, error) {
		require.NoError(t, f.client.Set(ctx, "cart:u1", "[]", 0).Err())
		return items, nil
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("p1", &models.Customization{Styles: models.StyleSelection{Threads: []string{"a", "b"}}})
	b := Fingerprint("p1", &models.Customization{Styles: models.StyleSelection{Threads: []string{"b", "a", "a"}}})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Fingerprint("p2", &models.Customization{Styles: models.StyleSelection{Threads: []string{"a", "b"}}}))
	assert.NotEqual(t, Fingerprint("p1", nil), a)
}

func TestRemoveSubmittedKeepsConcurrentChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Add(ctx, "u1", AddInput{ProductID: f.patch.String(), Quantity: 2})
	require.NoError(t, err)
	submitted := append([]models.CartItem(nil), c.Items...)

	// pendant la soumission : une ligne en plus et une quantité augmentée
	_, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.mug.String(), Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, "u1", AddInput{ProductID: f.patch.String(), Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveSubmitted(ctx, "u1", submitted))

	c, err = f.svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, f.patch.String(), c.Items[0].ProductID)
	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, f.mug.String(), c.Items[1].ProductID)

	require.NoError(t, f.svc.RemoveSubmitted(ctx, "u1", c.Items))
	assert.False(t, f.mr.Exists("cart:u1"))
}
