package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanProceedOffline(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		op       OperationKind
		expected bool
	}{
		{OpSaveProfile, true},
		{OpSaveGoals, true},
		{OpValidateProfile, true},
		{OpNavigate, true},
		{OpCompleteOnboarding, true},
		{OpManualSync, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, CanProceedOffline(tc.op))
			assert.True(t, KnownOperation(tc.op))
		})
	}

	t.Run("unknown operations require the network", func(t *testing.T) {
		t.Parallel()
		assert.False(t, CanProceedOffline(OperationKind("delete_account")))
		assert.False(t, KnownOperation(OperationKind("delete_account")))
	})
}
