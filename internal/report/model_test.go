// File: internal/report/model_test.go
package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to ReportStatus }{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusApproved, StatusInProgress},
		{StatusApproved, StatusRejected},
		{StatusInProgress, StatusCompleted},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to ReportStatus }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusApproved, StatusCompleted},
		{StatusApproved, StatusPending},
		{StatusInProgress, StatusRejected},
		{StatusInProgress, StatusPending},
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusPending},
		{StatusRejected, StatusApproved},
		{StatusRejected, StatusPending},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}
}

func TestTerminalStatusesHaveNoEdges(t *testing.T) {
	for _, terminal := range []ReportStatus{StatusCompleted, StatusRejected} {
		for _, to := range []ReportStatus{StatusPending, StatusApproved, StatusInProgress, StatusCompleted, StatusRejected} {
			assert.False(t, CanTransition(terminal, to), "%s must be terminal", terminal)
		}
	}
}
