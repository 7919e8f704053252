package services

import (
	"context"
	"testing"

	"github.com/nattawatj/go-storefront/app/apperrors"
	"github.com/nattawatj/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartTestEnv struct {
	svc      *CartService
	products *fakeProductRepo
	carts    *fakeCartRepo
	items    *fakeCartItemRepo
}

func newCartTestEnv() *cartTestEnv {
	products := newFakeProductRepo()
	state := newCartState()
	carts := &fakeCartRepo{state: state, products: products}
	items := &fakeCartItemRepo{state: state}

	return &cartTestEnv{
		svc:      NewCartService(carts, items, products),
		products: products,
		carts:    carts,
		items:    items,
	}
}

func (e *cartTestEnv) addProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Sku:           "sku-" + name,
		Name:          name,
		Slug:          name,
		OriginalPrice: decimal.NewFromInt(price),
		Stock:         stock,
		IsActive:      true,
	}
	require.NoError(t, e.products.Create(context.Background(), product))
	return product
}

func TestCartAddItemPartialWhenStockShort(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "lamp", 200, 3)

	summary, err := env.svc.AddItem(context.Background(), "u1", product.ID, 5)
	require.NoError(t, err)

	assert.True(t, summary.Adjusted)
	assert.Contains(t, summary.Message, "3")
	require.Len(t, summary.Cart.CartItems, 1)
	assert.Equal(t, 3, summary.Cart.CartItems[0].Qty)
	// Adding to the cart never touches stock.
	assert.Equal(t, 3, env.products.stockOf(product.ID))
}

func TestCartAddItemNothingAddable(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "lamp", 200, 3)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 3)
	require.NoError(t, err)

	_, err = env.svc.AddItem(context.Background(), "u1", product.ID, 1)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindBusinessRule))
}

func TestCartAddItemMergesExistingLine(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "chair", 500, 10)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 2)
	require.NoError(t, err)
	summary, err := env.svc.AddItem(context.Background(), "u1", product.ID, 3)
	require.NoError(t, err)

	require.Len(t, summary.Cart.CartItems, 1)
	assert.Equal(t, 5, summary.Cart.CartItems[0].Qty)
	assert.True(t, summary.TotalPrice.Equal(decimal.NewFromInt(2500)))
}

func TestCartAddItemRejectsZeroQty(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "desk", 900, 5)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCartUpdateItemCapsAtStock(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "rug", 300, 2)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 1)
	require.NoError(t, err)

	summary, err := env.svc.UpdateItem(context.Background(), "u1", product.ID, 9)
	require.NoError(t, err)

	assert.True(t, summary.Adjusted)
	require.Len(t, summary.Cart.CartItems, 1)
	assert.Equal(t, 2, summary.Cart.CartItems[0].Qty)
}

func TestCartGetClampsToLiveStock(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "vase", 150, 5)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 5)
	require.NoError(t, err)

	// Stock shrinks behind the cart's back.
	env.products.products[product.ID].Stock = 2

	summary, err := env.svc.GetUserCart(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, summary.Adjusted)
	require.Len(t, summary.Cart.CartItems, 1)
	assert.Equal(t, 2, summary.Cart.CartItems[0].Qty)
	assert.True(t, summary.TotalPrice.Equal(decimal.NewFromInt(300)))
}

func TestCartGetDropsOutOfStockLineAndDeletesEmptyCart(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "mug", 90, 4)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 2)
	require.NoError(t, err)

	env.products.products[product.ID].Stock = 0

	summary, err := env.svc.GetUserCart(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, summary.Adjusted)
	assert.Nil(t, summary.Cart)
	assert.True(t, summary.TotalPrice.IsZero())
	assert.Empty(t, env.carts.state.carts)
}

func TestCartGetUsesEffectivePrice(t *testing.T) {
	env := newCartTestEnv()
	product := &models.Product{
		Sku:            "disc-1",
		Name:           "discounted",
		Slug:           "discounted",
		OriginalPrice:  decimal.NewFromInt(1000),
		DiscountAmount: decimal.NewFromInt(200),
		Stock:          5,
		IsActive:       true,
	}
	require.NoError(t, env.products.Create(context.Background(), product))

	summary, err := env.svc.AddItem(context.Background(), "u1", product.ID, 2)
	require.NoError(t, err)
	assert.True(t, summary.TotalPrice.Equal(decimal.NewFromInt(1600)), "got %s", summary.TotalPrice)
}

func TestCartRemoveLastItemDeletesCart(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "shelf", 700, 5)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 1)
	require.NoError(t, err)

	summary, err := env.svc.RemoveItem(context.Background(), "u1", product.ID)
	require.NoError(t, err)

	assert.Nil(t, summary.Cart)
	assert.Empty(t, env.carts.state.carts)
}

func TestCartRemoveMissingItem(t *testing.T) {
	env := newCartTestEnv()
	product := env.addProduct(t, "stool", 250, 5)

	_, err := env.svc.AddItem(context.Background(), "u1", product.ID, 1)
	require.NoError(t, err)

	_, err = env.svc.RemoveItem(context.Background(), "u1", "missing-product")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCartGetEmptyForNewUser(t *testing.T) {
	env := newCartTestEnv()

	summary, err := env.svc.GetUserCart(context.Background(), "stranger")
	require.NoError(t, err)
	assert.Nil(t, summary.Cart)
	assert.True(t, summary.TotalPrice.IsZero())
}
