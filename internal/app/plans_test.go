package app

import (
	"errors"
	"testing"
)

func TestPlanCatalog_ResolveKnownPlans(t *testing.T) {
	t.Parallel()

	catalog := DefaultPlanCatalog()

	tests := []struct {
		planID      string
		wantCredits int64
		wantAmount  int64
	}{
		{planID: "Basic", wantCredits: 25, wantAmount: 10},
		{planID: "Advanced", wantCredits: 70, wantAmount: 30},
		{planID: "Premier", wantCredits: 150, wantAmount: 50},
	}

	for _, tt := range tests {
		t.Run(tt.planID, func(t *testing.T) {
			plan, err := catalog.Resolve(tt.planID)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.planID, err)
			}
			if plan.Name != tt.planID {
				t.Errorf("name mismatch: got %q want %q", plan.Name, tt.planID)
			}
			if plan.Credits != tt.wantCredits {
				t.Errorf("credits mismatch: got %d want %d", plan.Credits, tt.wantCredits)
			}
			if plan.Amount != tt.wantAmount {
				t.Errorf("amount mismatch: got %d want %d", plan.Amount, tt.wantAmount)
			}
		})
	}
}

func TestPlanCatalog_ResolveRejectsUnknownPlans(t *testing.T) {
	t.Parallel()

	catalog := DefaultPlanCatalog()

	for _, planID := range []string{"", "basic", "BASIC", "Advanced ", "Platinum", "1"} {
		if _, err := catalog.Resolve(planID); !errors.Is(err, ErrUnknownPlan) {
			t.Errorf("Resolve(%q): expected ErrUnknownPlan, got %v", planID, err)
		}
	}
}
