package redis

import (
	"context"
	"strings"
	"testing"

	"github.com/RishiKendai/fpsim/internal/models"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		got      string
		expected string
	}{
		{jobStatusKey("job-1"), "identify_job_status:job-1"},
		{jobResultKey("job-1"), "identify_job_result:job-1"},
		{snapshotKey("v-42"), "visitor_snapshot:v-42"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, tt.got)
		}
	}
}

func TestUpdateStatusRejectsUnknownStep(t *testing.T) {
	// The step is validated before Redis is touched
	store := NewJobStore(&Client{})

	err := store.UpdateStatus(context.Background(), "job-1", models.Step("preprocessing"))
	if err == nil || !strings.Contains(err.Error(), "unknown step") {
		t.Errorf("Expected unknown step error, got %v", err)
	}
}
