package app

import "github.com/imagify/credits-service/internal/domain"

// PlanCatalog is the fixed set of purchasable credit bundles. Lookups are
// exact-match on the plan name; there is no fuzzy or case-insensitive
// matching.
type PlanCatalog map[string]domain.Plan

// DefaultPlanCatalog returns the three plans offered by the service.
func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		"Basic":    {Name: "Basic", Credits: 25, Amount: 10},
		"Advanced": {Name: "Advanced", Credits: 70, Amount: 30},
		"Premier":  {Name: "Premier", Credits: 150, Amount: 50},
	}
}

// Resolve returns the plan for the given id, or ErrUnknownPlan.
func (c PlanCatalog) Resolve(planID string) (domain.Plan, error) {
	plan, ok := c[planID]
	if !ok {
		return domain.Plan{}, ErrUnknownPlan
	}
	return plan, nil
}
