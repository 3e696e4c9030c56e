package order

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"wardrobe-be/internal/garment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrderTx(ctx context.Context, o *Order, items []LineItem) (int, error) {
	args := m.Called(ctx, o, items)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id)
	if fn, ok := args.Get(0).(func(uuid.UUID) *Order); ok {
		return fn(id), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Order, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestTotalPrice(t *testing.T) {
	t.Run("Scenario", func(t *testing.T) {
		total := TotalPrice([]LineItem{
			{Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("25.00")},
		})
		assert.Equal(t, "45.00", total.StringFixed(2))
	})

	t.Run("Randomized", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 200; i++ {
			n := rng.Intn(8) + 1
			items := make([]LineItem, n)
			var cents int64
			for j := range items {
				c := rng.Int63n(1_000_000)
				q := rng.Intn(20) + 1
				items[j] = LineItem{Quantity: q, UnitPrice: decimal.New(c, -2)}
				cents += c * int64(q)
			}
			assert.True(t, decimal.New(cents, -2).Equal(TotalPrice(items)), "iteration %d", i)
		}
	})

	t.Run("NoFloatDrift", func(t *testing.T) {
		total := TotalPrice([]LineItem{
			{Quantity: 1, UnitPrice: decimal.RequireFromString("0.10")},
			{Quantity: 1, UnitPrice: decimal.RequireFromString("0.20")},
		})
		assert.Equal(t, "0.3", total.String())
	})
}

func TestValidateLineItems(t *testing.T) {
	g := uuid.NewString()

	t.Run("Empty", func(t *testing.T) {
		_, err := ValidateLineItems(nil)
		assert.ErrorIs(t, err, ErrInvalidLineItems)
	})

	t.Run("Valid", func(t *testing.T) {
		items, err := ValidateLineItems([]LineItemInput{{Garment: " " + g + " ", Size: "M", Quantity: 2, UnitPrice: price("10")}})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, g, items[0].GarmentID.String())
		assert.Equal(t, 2, items[0].Quantity)
	})

	cases := []struct {
		name string
		in   LineItemInput
		msg  string
	}{
		{"ZeroQuantity", LineItemInput{Garment: g, Size: "M", Quantity: 0, UnitPrice: price("10.00")}, "[0].quantity must be at least 1"},
		{"NegativePrice", LineItemInput{Garment: g, Size: "M", Quantity: 1, UnitPrice: price("-1")}, "[0].unitPrice must be a non-negative number"},
		{"QuantityOverflow", LineItemInput{Garment: g, Size: "M", Quantity: 3000000000, UnitPrice: price("1")}, "[0].quantity must be at most 2147483647"},
		{"PriceOverflow", LineItemInput{Garment: g, Size: "M", Quantity: 1, UnitPrice: price("10000000000")}, "[0].unitPrice must be at most 9999999999.99"},
		{"TotalOverflow", LineItemInput{Garment: g, Size: "M", Quantity: 3, UnitPrice: price("9999999999.99")}, "order total must be at most 9999999999.99"},
		{"MissingPrice", LineItemInput{Garment: g, Size: "M", Quantity: 1}, "[0].unitPrice is required"},
		{"SubCentPrice", LineItemInput{Garment: g, Size: "M", Quantity: 1, UnitPrice: price("1.005")}, "[0].unitPrice must have at most 2 decimal places"},
		{"BadGarment", LineItemInput{Garment: "abc", Size: "M", Quantity: 1, UnitPrice: price("1")}, "[0].garment is invalid"},
		{"MissingSize", LineItemInput{Garment: g, Size: " ", Quantity: 1, UnitPrice: price("1")}, "[0].size is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateLineItems([]LineItemInput{tc.in})
			assert.ErrorIs(t, err, ErrInvalidLineItems)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	t.Run("ReportsEveryProblem", func(t *testing.T) {
		_, err := ValidateLineItems([]LineItemInput{
			{Garment: g, Size: "M", Quantity: 1, UnitPrice: price("1")},
			{Garment: g, Size: "M", Quantity: 0, UnitPrice: price("-1")},
		})
		assert.EqualError(t, err, "invalid line items: [1].quantity must be at least 1, [1].unitPrice must be a non-negative number")
	})
}

func TestLineItemInput_UnmarshalJSON(t *testing.T) {
	id := uuid.NewString()

	t.Run("Direct", func(t *testing.T) {
		var in LineItemInput
		require.NoError(t, json.Unmarshal([]byte(`{"garment":"`+id+`","size":"M","quantity":2,"unitPrice":10}`), &in))
		assert.Equal(t, id, in.Garment)
		assert.Equal(t, 2, in.Quantity)
		assert.Equal(t, "10", in.UnitPrice.String())
	})

	t.Run("BaseMongoID", func(t *testing.T) {
		var in LineItemInput
		require.NoError(t, json.Unmarshal([]byte(`{"base":{"_id":"`+id+`"},"size":"S","quantity":1,"unitPrice":"5.50"}`), &in))
		assert.Equal(t, id, in.Garment)
		assert.Equal(t, "5.5", in.UnitPrice.String())
	})

	t.Run("BaseID", func(t *testing.T) {
		var in LineItemInput
		require.NoError(t, json.Unmarshal([]byte(`{"base":{"id":"`+id+`"}}`), &in))
		assert.Equal(t, id, in.Garment)
	})

	t.Run("GarmentWins", func(t *testing.T) {
		var in LineItemInput
		require.NoError(t, json.Unmarshal([]byte(`{"garment":"`+id+`","base":{"_id":"other"}}`), &in))
		assert.Equal(t, id, in.Garment)
	})
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	g1, g2 := uuid.New(), uuid.New()
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	newSvc := func(repo Repository) Service {
		return &service{repo: repo, now: func() time.Time { return fixed }}
	}

	t.Run("Scenario", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newSvc(repo)

		var placed *Order
		repo.On("CreateOrderTx", ctx, mock.MatchedBy(func(o *Order) bool {
			placed = o
			return o.OwnerID == owner && o.TotalPrice.Equal(decimal.RequireFromString("45")) && o.Date.Equal(fixed)
		}), mock.MatchedBy(func(items []LineItem) bool {
			return len(items) == 2 && items[0].GarmentID == g1 && items[1].GarmentID == g2
		})).Return(1, nil).Once()
		repo.On("GetByID", ctx, mock.AnythingOfType("uuid.UUID")).Return(func(id uuid.UUID) *Order {
			return &Order{
				ID:         id,
				OwnerID:    owner,
				TotalPrice: placed.TotalPrice,
				Items: []*OrderItem{
					{GarmentID: &g1, Garment: &garment.Garment{ID: g1, Type: garment.TypeSecondHand, SoldOut: true}, Quantity: 2},
					{GarmentID: &g2, Garment: &garment.Garment{ID: g2, Type: garment.TypeNew}, Quantity: 1},
				},
			}
		}, nil).Once()

		o, err := svc.PlaceOrder(ctx, owner, []LineItemInput{
			{Garment: g1.String(), Size: "M", Quantity: 2, UnitPrice: price("10.00")},
			{Garment: g2.String(), Size: "L", Quantity: 1, UnitPrice: price("25.00")},
		})

		require.NoError(t, err)
		assert.Equal(t, placed.ID, o.ID)
		assert.Equal(t, "45.00", o.TotalPrice.StringFixed(2))
		require.Len(t, o.Items, 2)
		assert.True(t, o.Items[0].Garment.SoldOut)
		assert.False(t, o.Items[1].Garment.SoldOut)
		repo.AssertExpectations(t)
	})

	t.Run("EmptyNeverTouchesStore", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newSvc(repo)

		_, err := svc.PlaceOrder(ctx, owner, []LineItemInput{})

		assert.ErrorIs(t, err, ErrInvalidLineItems)
		repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidItemNeverTouchesStore", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newSvc(repo)

		_, err := svc.PlaceOrder(ctx, owner, []LineItemInput{
			{Garment: g1.String(), Size: "M", Quantity: 0, UnitPrice: price("10.00")},
		})

		assert.ErrorIs(t, err, ErrInvalidLineItems)
		repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CallerPriceIsTrusted", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newSvc(repo)

		// Catalog price of the garment is irrelevant; the submitted 0.01 is kept.
		repo.On("CreateOrderTx", ctx, mock.MatchedBy(func(o *Order) bool {
			return o.TotalPrice.Equal(decimal.RequireFromString("0.01"))
		}), mock.MatchedBy(func(items []LineItem) bool {
			return items[0].UnitPrice.Equal(decimal.RequireFromString("0.01"))
		})).Return(0, nil).Once()
		repo.On("GetByID", ctx, mock.Anything).Return(&Order{TotalPrice: decimal.RequireFromString("0.01")}, nil).Once()

		o, err := svc.PlaceOrder(ctx, owner, []LineItemInput{
			{Garment: g1.String(), Size: "M", Quantity: 1, UnitPrice: price("0.01")},
		})

		require.NoError(t, err)
		assert.Equal(t, "0.01", o.TotalPrice.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("StoreErrorsPropagate", func(t *testing.T) {
		for _, want := range []error{ErrGarmentSoldOut, ErrGarmentNotFound, errors.New("db down")} {
			repo := new(MockRepository)
			svc := newSvc(repo)
			repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything).Return(0, want).Once()

			_, err := svc.PlaceOrder(ctx, owner, []LineItemInput{
				{Garment: g1.String(), Size: "M", Quantity: 1, UnitPrice: price("10")},
			})

			assert.ErrorIs(t, err, want)
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		}
	})
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		want := []*Order{{ID: uuid.New(), OwnerID: owner}}
		repo.On("ListByOwner", ctx, owner).Return(want, nil).Once()

		got, err := NewService(repo).ListOrders(ctx, owner)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("Error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListByOwner", ctx, owner).Return(nil, errors.New("timeout")).Once()

		_, err := NewService(repo).ListOrders(ctx, owner)

		assert.EqualError(t, err, "timeout")
	})
}
