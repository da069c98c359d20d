package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wekeepgrowing/entitlement-service/internal/domain/entity"
)

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "sub:customer:cus_123", snapshotKey("cus_123"))
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *entity.SubscriptionSnapshot
	}{
		{
			name: "full snapshot",
			raw:  `{"status":"active","currentPeriodEnd":"2025-07-01T00:00:00Z","trialEnd":null}`,
			expected: &entity.SubscriptionSnapshot{
				Status:           entity.StatusActive,
				CurrentPeriodEnd: func() *time.Time { t := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC); return &t }(),
			},
		},
		{
			name:     "status only",
			raw:      `{"status":"canceled"}`,
			expected: &entity.SubscriptionSnapshot{Status: "canceled"},
		},
		{
			name:     "not json is treated as absent",
			raw:      `corrupted`,
			expected: nil,
		},
		{
			name:     "valid json without status is treated as absent",
			raw:      `{"unexpected":true}`,
			expected: nil,
		},
		{
			name:     "empty value is treated as absent",
			raw:      ``,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeSnapshot([]byte(tt.raw)))
		})
	}
}
