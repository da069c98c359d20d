package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/entitlement-service/internal/domain/errors"
	"github.com/wekeepgrowing/entitlement-service/internal/domain/provider"
	"github.com/wekeepgrowing/entitlement-service/internal/usecase"
)

func TestSessionLinkService_Link(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("missing provider returns configuration error", func(t *testing.T) {
		service := usecase.NewSessionLinkService(nil, nil, logger)

		link, err := service.Link(ctx, "cs_test_123")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, domainErrors.ErrBillingNotConfigured)
	})

	t.Run("session without customer is invalid", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(&provider.CheckoutSession{
			ID: "cs_test_123",
		}, nil)

		link, err := service.Link(ctx, "cs_test_123")

		assert.Nil(t, link)
		assert.ErrorIs(t, err, domainErrors.ErrInvalidSession)
	})

	t.Run("session retrieval failure is surfaced", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(nil, errors.New("no such session"))

		link, err := service.Link(ctx, "cs_test_123")

		assert.Nil(t, link)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domainErrors.ErrInvalidSession)
	})

	t.Run("session with subscription links and primes the cache", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(&provider.CheckoutSession{
			ID:             "cs_test_123",
			CustomerID:     "cus_123",
			SubscriptionID: "sub_1",
		}, nil)
		mockBilling.On("GetSubscription", ctx, "sub_1").Return(&provider.Subscription{
			ID:               "sub_1",
			CustomerID:       "cus_123",
			Status:           entity.StatusActive,
			CurrentPeriodEnd: periodEnd,
		}, nil)
		mockRepo.On("Upsert", ctx, "cus_123", mock.MatchedBy(func(s *entity.SubscriptionSnapshot) bool {
			return s.Status == entity.StatusActive && s.CurrentPeriodEnd != nil
		})).Return(nil)

		link, err := service.Link(ctx, "cs_test_123")

		assert.NoError(t, err)
		assert.Equal(t, "cus_123", link.CustomerID)
		assert.NotNil(t, link.Snapshot)
		assert.Equal(t, entity.StatusActive, link.Snapshot.Status)
		mockRepo.AssertExpectations(t)
		mockBilling.AssertExpectations(t)
	})

	t.Run("session without subscription still binds the customer", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(&provider.CheckoutSession{
			ID:         "cs_test_123",
			CustomerID: "cus_123",
		}, nil)

		link, err := service.Link(ctx, "cs_test_123")

		assert.NoError(t, err)
		assert.Equal(t, "cus_123", link.CustomerID)
		assert.Nil(t, link.Snapshot)
		mockRepo.AssertNotCalled(t, "Upsert")
		mockBilling.AssertNotCalled(t, "GetSubscription")
	})

	t.Run("subscription fetch failure does not fail the link", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(&provider.CheckoutSession{
			ID:             "cs_test_123",
			CustomerID:     "cus_123",
			SubscriptionID: "sub_1",
		}, nil)
		mockBilling.On("GetSubscription", ctx, "sub_1").Return(nil, errors.New("stripe unavailable"))

		link, err := service.Link(ctx, "cs_test_123")

		assert.NoError(t, err)
		assert.Equal(t, "cus_123", link.CustomerID)
		assert.Nil(t, link.Snapshot)
		mockRepo.AssertNotCalled(t, "Upsert")
	})

	t.Run("cache write failure does not fail the link", func(t *testing.T) {
		mockRepo := new(MockSnapshotRepository)
		mockBilling := new(MockBillingProvider)
		service := usecase.NewSessionLinkService(mockRepo, mockBilling, logger)

		mockBilling.On("GetCheckoutSession", ctx, "cs_test_123").Return(&provider.CheckoutSession{
			ID:             "cs_test_123",
			CustomerID:     "cus_123",
			SubscriptionID: "sub_1",
		}, nil)
		mockBilling.On("GetSubscription", ctx, "sub_1").Return(&provider.Subscription{
			ID:         "sub_1",
			CustomerID: "cus_123",
			Status:     entity.StatusTrialing,
			TrialEnd:   time.Now().Add(7 * 24 * time.Hour).Unix(),
		}, nil)
		mockRepo.On("Upsert", ctx, "cus_123", mock.Anything).Return(errors.New("redis write failed"))

		link, err := service.Link(ctx, "cs_test_123")

		assert.NoError(t, err)
		assert.Equal(t, "cus_123", link.CustomerID)
		assert.NotNil(t, link.Snapshot)
		mockRepo.AssertExpectations(t)
	})
}
