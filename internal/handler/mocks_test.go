package handler

import (
	"context"

	"gearhub/internal/checkout"
	"gearhub/internal/model"
	"gearhub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, owner model.CartOwner) (*model.CartView, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error) {
	args := m.Called(ctx, owner, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, owner model.CartOwner, productID uuid.UUID, quantity int) (*model.CartView, error) {
	args := m.Called(ctx, owner, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, owner model.CartOwner, productID uuid.UUID) (*model.CartView, bool, error) {
	args := m.Called(ctx, owner, productID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.CartView), args.Bool(1), args.Error(2)
}

func (m *MockCartService) Merge(ctx context.Context, sessionToken string, userID uuid.UUID) (*model.CartView, error) {
	args := m.Called(ctx, sessionToken, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

// MockCheckoutService is a mock implementation of service.CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Start(ctx context.Context, owner model.CartOwner) (*checkout.Session, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) SubmitContact(ctx context.Context, owner model.CartOwner, in checkout.ContactInput) (*checkout.Session, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) SubmitShippingAddress(ctx context.Context, owner model.CartOwner, in checkout.AddressInput) (*checkout.Session, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) SubmitBilling(ctx context.Context, owner model.CartOwner, in checkout.BillingInput) (*checkout.Session, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) SelectShippingMethod(ctx context.Context, owner model.CartOwner, methodID uuid.UUID) (*checkout.Session, error) {
	args := m.Called(ctx, owner, methodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) SubmitPayment(ctx context.Context, owner model.CartOwner, in checkout.PaymentInput) (*checkout.Session, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockCheckoutService) Review(ctx context.Context, owner model.CartOwner, discountCode string) (*service.ReviewSummary, error) {
	args := m.Called(ctx, owner, discountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReviewSummary), args.Error(1)
}

func (m *MockCheckoutService) ListShippingMethods(ctx context.Context, owner model.CartOwner) ([]service.ShippingOption, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShippingOption), args.Error(1)
}

func (m *MockCheckoutService) Abandon(ctx context.Context, owner model.CartOwner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, owner model.CartOwner, in service.PlaceOrderInput) (*service.OrderResult, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderResult), args.Error(1)
}

func (m *MockOrderService) GetByNumber(ctx context.Context, viewer service.OrderViewer, number string) (*service.OrderResult, error) {
	args := m.Called(ctx, viewer, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderResult), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetStatusHistory(ctx context.Context, viewer service.OrderViewer, number string) ([]model.OrderStatusHistory, error) {
	args := m.Called(ctx, viewer, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderStatusHistory), args.Error(1)
}

func (m *MockOrderService) TransitionStatus(ctx context.Context, number string, next model.OrderStatus, note string, actor *uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, number, next, note, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) RecordPaymentStatus(ctx context.Context, number string, status model.PaymentStatus, reference string) (*model.Order, error) {
	args := m.Called(ctx, number, status, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}
