package scenario

import (
	"fmt"
	"strings"
)

// Definition registers a scenario family
type Definition struct {
	Name        string
	Description string
	// PerMethod families are expanded once per selected payment method
	PerMethod bool
	Build     func(PaymentMethod) Scenario
}

// Definitions returns every built-in scenario family in run order
func Definitions() []Definition {
	return []Definition{
		{
			Name:        NameDynamicPackage,
			Description: "buy a package and pay with the selected method",
			PerMethod:   true,
			Build:       DynamicPackage,
		},
		{
			Name:        NamePendingOrder,
			Description: "pay a pending order with the selected method",
			PerMethod:   true,
			Build:       PendingOrderPayment,
		},
		{
			Name:        NameAdminPlan,
			Description: "activate a user plan from the admin panel",
			Build:       func(PaymentMethod) Scenario { return AdminPlanActivation() },
		},
		{
			Name:        NameNoBalancePkg,
			Description: "package checkout is refused on an empty balance",
			Build:       func(PaymentMethod) Scenario { return NoBalancePackage() },
		},
		{
			Name:        NameNoBalanceOrder,
			Description: "pending order payment is refused on an empty balance",
			Build:       func(PaymentMethod) Scenario { return NoBalanceOrder() },
		},
	}
}

// Select expands scenario names and a payment method flag into concrete scenarios.
// No names, or "all", selects every family.
func Select(names []string, method string) ([]Scenario, error) {
	methods, err := ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}

	defs := Definitions()
	byName := make(map[string]Definition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	var chosen []Definition
	all := false
	seen := make(map[string]bool)
	for _, raw := range names {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if name == "all" {
				all = true
				continue
			}
			d, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("unknown scenario %q", name)
			}
			if !seen[name] {
				seen[name] = true
				chosen = append(chosen, d)
			}
		}
	}
	if all {
		chosen = defs
	}
	if len(chosen) == 0 {
		chosen = defs
	}

	var out []Scenario
	for _, d := range chosen {
		if !d.PerMethod {
			out = append(out, d.Build(""))
			continue
		}
		for _, m := range methods {
			out = append(out, d.Build(m))
		}
	}
	return out, nil
}
