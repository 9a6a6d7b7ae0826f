package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemainingHours(t *testing.T) {
	assert.Equal(t, 90.0, RemainingHours(100, 10))
	assert.Equal(t, 0.0, RemainingHours(40, 40))
	// Overruns go negative rather than clamping; dashboards surface them.
	assert.Equal(t, -5.0, RemainingHours(40, 45))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 10, ProgressPercentage(10, 100))
	assert.Equal(t, 0, ProgressPercentage(0, 100))
	assert.Equal(t, 100, ProgressPercentage(100, 100))

	// Round half up at the integer boundary.
	assert.Equal(t, 13, ProgressPercentage(12.5, 100))
	assert.Equal(t, 12, ProgressPercentage(12.4, 100))
	assert.Equal(t, 87, ProgressPercentage(34.6, 40))

	// Clamped at 100 when used exceeds allocation.
	assert.Equal(t, 100, ProgressPercentage(150, 100))

	// Zero or negative allocation reports no progress.
	assert.Equal(t, 0, ProgressPercentage(10, 0))
	assert.Equal(t, 0, ProgressPercentage(10, -5))
}

func TestLedgerScenarioVariationApproval(t *testing.T) {
	// 100 allocated, 10 used, then a 15 hour variation lands.
	allocated, used := 100.0, 10.0
	assert.Equal(t, 90.0, RemainingHours(allocated, used))
	assert.Equal(t, 10, ProgressPercentage(used, allocated))

	allocated += 15
	assert.Equal(t, 105.0, RemainingHours(allocated, used))
	assert.Equal(t, 9, ProgressPercentage(used, allocated))
}
