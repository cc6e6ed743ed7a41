package service

import (
	"context"
	"testing"

	"gearhub/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionOwner(token string) model.CartOwner {
	return model.CartOwner{SessionToken: token}
}

func activeProduct(price string, stock int) *model.Product {
	return &model.Product{
		ID:            uuid.New(),
		Name:          "Brake Pads",
		SKU:           "BP-100",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		ManageStock:   true,
		IsActive:      true,
	}
}

func TestCartService_AddItem_IncrementsExistingLine(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	owner := sessionOwner("sess-1")

	product := activeProduct("24.99", 10)
	cart := &model.Cart{ID: uuid.New()}

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewCartService(mockCartRepo, mockProductRepo, logger)

	mockProductRepo.On("GetByID", ctx, product.ID).Return(product, nil)
	mockCartRepo.On("GetOrCreate", ctx, owner).Return(cart, nil)
	mockCartRepo.On("AddItem", ctx, cart.ID, product.ID, 2).Return(nil)
	// After the upsert the line holds the accumulated quantity.
	mockCartRepo.On("GetLines", ctx, cart.ID).Return([]model.CartLine{
		{
			Item:    model.CartItem{ProductID: product.ID, Quantity: 5},
			Product: *product,
		},
	}, nil)

	view, err := svc.AddItem(ctx, owner, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, view.TotalItems)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("124.95")))

	mockCartRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
}

func TestCartService_AddItem_RejectsBadQuantity(t *testing.T) {
	svc := NewCartService(new(MockCartRepository), new(MockProductRepository), zerolog.Nop())

	_, err := svc.AddItem(context.Background(), sessionOwner("sess-1"), uuid.New(), 0)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)

	_, err = svc.AddItem(context.Background(), sessionOwner("sess-1"), uuid.New(), -3)
	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
}

func TestCartService_AddItem_UnknownOrInactiveProduct(t *testing.T) {
	ctx := context.Background()
	owner := sessionOwner("sess-1")

	mockCartRepo := new(MockCartRepository)
	mockProductRepo := new(MockProductRepository)
	svc := NewCartService(mockCartRepo, mockProductRepo, zerolog.Nop())

	missing := uuid.New()
	mockProductRepo.On("GetByID", ctx, missing).Return(nil, nil)

	_, err := svc.AddItem(ctx, owner, missing, 1)
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	inactive := activeProduct("10.00", 5)
	inactive.IsActive = false
	mockProductRepo.On("GetByID", ctx, inactive.ID).Return(inactive, nil)

	_, err = svc.AddItem(ctx, owner, inactive.ID, 1)
	assert.ErrorIs(t, err, model.ErrProductNotFound)

	mockCartRepo.AssertNotCalled(t, "AddItem")
}

func TestCartService_SetQuantity_MissingLine(t *testing.T) {
	ctx := context.Background()
	owner := sessionOwner("sess-1")
	cart := &model.Cart{ID: uuid.New()}
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	svc := NewCartService(mockCartRepo, new(MockProductRepository), zerolog.Nop())

	mockCartRepo.On("GetOrCreate", ctx, owner).Return(cart, nil)
	mockCartRepo.On("SetQuantity", ctx, cart.ID, productID, 3).Return(false, nil)

	_, err := svc.SetQuantity(ctx, owner, productID, 3)
	assert.ErrorIs(t, err, model.ErrCartItemNotFound)
}

func TestCartService_SetQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	owner := sessionOwner("sess-1")
	cart := &model.Cart{ID: uuid.New()}
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	svc := NewCartService(mockCartRepo, new(MockProductRepository), zerolog.Nop())

	mockCartRepo.On("GetOrCreate", ctx, owner).Return(cart, nil)
	// The line did not exist, but a removal target of zero is still fine.
	mockCartRepo.On("SetQuantity", ctx, cart.ID, productID, 0).Return(false, nil)
	mockCartRepo.On("GetLines", ctx, cart.ID).Return([]model.CartLine{}, nil)

	view, err := svc.SetQuantity(ctx, owner, productID, 0)
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())
}

func TestCartService_RemoveItem_AbsentLineIsNotAnError(t *testing.T) {
	ctx := context.Background()
	owner := sessionOwner("sess-1")
	cart := &model.Cart{ID: uuid.New()}
	productID := uuid.New()

	mockCartRepo := new(MockCartRepository)
	svc := NewCartService(mockCartRepo, new(MockProductRepository), zerolog.Nop())

	mockCartRepo.On("GetOrCreate", ctx, owner).Return(cart, nil)
	mockCartRepo.On("RemoveItem", ctx, cart.ID, productID).Return(false, nil)
	mockCartRepo.On("GetLines", ctx, cart.ID).Return([]model.CartLine{}, nil)

	view, removed, err := svc.RemoveItem(ctx, owner, productID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NotNil(t, view)
}

func TestCartService_Merge_FoldsSessionCartIntoUserCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	userCart := &model.Cart{ID: uuid.New(), UserID: &userID}
	sessionCart := &model.Cart{ID: uuid.New()}

	productA := activeProduct("10.00", 50)
	productB := activeProduct("20.00", 50)

	mockCartRepo := new(MockCartRepository)
	svc := NewCartService(mockCartRepo, new(MockProductRepository), zerolog.Nop())

	mockCartRepo.On("GetOrCreate", ctx, model.CartOwner{UserID: &userID}).Return(userCart, nil)
	mockCartRepo.On("Find", ctx, model.CartOwner{SessionToken: "sess-1"}).Return(sessionCart, nil)
	mockCartRepo.On("GetLines", ctx, sessionCart.ID).Return([]model.CartLine{
		{Item: model.CartItem{ProductID: productA.ID, Quantity: 2}, Product: *productA},
		{Item: model.CartItem{ProductID: productB.ID, Quantity: 1}, Product: *productB},
	}, nil)
	mockCartRepo.On("AddItem", ctx, userCart.ID, productA.ID, 2).Return(nil)
	mockCartRepo.On("AddItem", ctx, userCart.ID, productB.ID, 1).Return(nil)
	mockCartRepo.On("Delete", ctx, sessionCart.ID).Return(nil)
	mockCartRepo.On("GetLines", ctx, userCart.ID).Return([]model.CartLine{
		{Item: model.CartItem{ProductID: productA.ID, Quantity: 2}, Product: *productA},
		{Item: model.CartItem{ProductID: productB.ID, Quantity: 1}, Product: *productB},
	}, nil)

	view, err := svc.Merge(ctx, "sess-1", userID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalItems)

	mockCartRepo.AssertExpectations(t)
}

func TestCartService_Merge_NoSessionCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	userCart := &model.Cart{ID: uuid.New(), UserID: &userID}

	mockCartRepo := new(MockCartRepository)
	svc := NewCartService(mockCartRepo, new(MockProductRepository), zerolog.Nop())

	mockCartRepo.On("GetOrCreate", ctx, model.CartOwner{UserID: &userID}).Return(userCart, nil)
	mockCartRepo.On("Find", ctx, model.CartOwner{SessionToken: "gone"}).Return(nil, nil)
	mockCartRepo.On("GetLines", ctx, userCart.ID).Return([]model.CartLine{}, nil)

	view, err := svc.Merge(ctx, "gone", userID)
	require.NoError(t, err)
	assert.True(t, view.IsEmpty())

	mockCartRepo.AssertNotCalled(t, "Delete")
}
