package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
)

type mockSnapshotStore struct {
	mock.Mock
}

func (m *mockSnapshotStore) Get(ctx context.Context, customerID string) (*entity.SubscriptionSnapshot, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SubscriptionSnapshot), args.Error(1)
}

func (m *mockSnapshotStore) Upsert(ctx context.Context, customerID string, snapshot *entity.SubscriptionSnapshot) error {
	args := m.Called(ctx, customerID, snapshot)
	return args.Error(0)
}

type mockBilling struct {
	mock.Mock
}

func (m *mockBilling) GetCheckoutSession(ctx context.Context, sessionID string) (*provider.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutSession), args.Error(1)
}

func (m *mockBilling) GetSubscription(ctx context.Context, subscriptionID string) (*provider.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.Subscription), args.Error(1)
}

func (m *mockBilling) ListSubscriptions(ctx context.Context, customerID string, limit int64) ([]*provider.Subscription, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*provider.Subscription), args.Error(1)
}

func (m *mockBilling) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	return e
}

func TestAccessHandler_CheckAccess(t *testing.T) {
	logger := zap.NewNop()

	t.Run("no cookie answers 200 with denial", func(t *testing.T) {
		store := new(mockSnapshotStore)
		billing := new(mockBilling)
		handler := NewAccessHandler(logger, usecase.NewEntitlementService(store, billing, logger))

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/check-access", nil)
		rec := httptest.NewRecorder()

		err := handler.CheckAccess(e.NewContext(req, rec))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var resp accessResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.HasAccess)
		assert.Nil(t, resp.Status)
		store.AssertNotCalled(t, "Get")
	})

	t.Run("bound customer with cached access answers 200 with the snapshot", func(t *testing.T) {
		store := new(mockSnapshotStore)
		billing := new(mockBilling)
		handler := NewAccessHandler(logger, usecase.NewEntitlementService(store, billing, logger))

		periodEnd := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
		store.On("Get", mock.Anything, "cus_123").Return(&entity.SubscriptionSnapshot{
			Status:           entity.StatusActive,
			CurrentPeriodEnd: &periodEnd,
		}, nil)

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/check-access", nil)
		req.AddCookie(&http.Cookie{Name: customerCookieName, Value: url.QueryEscape("cus_123")})
		rec := httptest.NewRecorder()

		err := handler.CheckAccess(e.NewContext(req, rec))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp accessResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.HasAccess)
		assert.Equal(t, entity.StatusActive, *resp.Status)
		assert.True(t, resp.CurrentPeriodEnd.Equal(periodEnd))
		store.AssertExpectations(t)
	})

	t.Run("provider failure still answers 200 with denial", func(t *testing.T) {
		store := new(mockSnapshotStore)
		billing := new(mockBilling)
		handler := NewAccessHandler(logger, usecase.NewEntitlementService(store, billing, logger))

		store.On("Get", mock.Anything, "cus_123").Return(nil, nil)
		billing.On("ListSubscriptions", mock.Anything, "cus_123", mock.Anything).
			Return(nil, echo.ErrServiceUnavailable)

		e := newTestEcho()
		req := httptest.NewRequest(http.MethodGet, "/api/check-access", nil)
		req.AddCookie(&http.Cookie{Name: customerCookieName, Value: "cus_123"})
		rec := httptest.NewRecorder()

		err := handler.CheckAccess(e.NewContext(req, rec))

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp accessResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.HasAccess)
		assert.Nil(t, resp.Status)
	})
}
