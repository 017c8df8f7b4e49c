package scenario

import "time"

// Scenario names
const (
	NameDynamicPackage = "dynamic-package"
	NamePendingOrder   = "pending-order"
	NameAdminPlan      = "admin-plan-activation"
	NameNoBalancePkg   = "no-balance-package"
	NameNoBalanceOrder = "no-balance-order"
)

func packageCheckoutSteps() []Step {
	return []Step{
		{Name: "open package list", Kind: KindNavigate, Target: "packages", Pause: time.Second},
		{Name: "buy first package", Kind: KindClick, Target: "package_buy", Pause: time.Second},
		{Name: "pick billing period", Kind: KindClick, Target: "period_option", Optional: true},
		{Name: "submit checkout", Kind: KindClick, Target: "checkout_submit", Pause: time.Second},
	}
}

func pendingOrderSteps() []Step {
	return []Step{
		{Name: "open order list", Kind: KindNavigate, Target: "orders", Pause: time.Second},
		{Name: "pay pending order", Kind: KindClick, Target: "pending_order_pay", Pause: time.Second},
	}
}

// DynamicPackage buys the first listed package and pays with method
func DynamicPackage(method PaymentMethod) Scenario {
	return Scenario{
		Name:          NameDynamicPackage,
		Description:   "Buy a package from the storefront and settle it",
		PaymentMethod: method,
		Steps:         append(packageCheckoutSteps(), paymentSteps(method)...),
	}
}

// PendingOrderPayment settles the newest unpaid order from the order list
func PendingOrderPayment(method PaymentMethod) Scenario {
	return Scenario{
		Name:          NamePendingOrder,
		Description:   "Pay an existing pending order",
		PaymentMethod: method,
		Steps:         append(pendingOrderSteps(), paymentSteps(method)...),
	}
}

// AdminPlanActivation assigns a plan to a user from the admin panel
func AdminPlanActivation() Scenario {
	return Scenario{
		Name:        NameAdminPlan,
		Description: "Activate a plan for a user from the admin panel",
		Steps: []Step{
			{Name: "open user admin", Kind: KindNavigate, Target: "admin_users", Base: BaseAdmin, Pause: time.Second},
			{Name: "search user", Kind: KindInput, Target: "admin_search_input", ValueKey: "admin_user_query"},
			{Name: "submit search", Kind: KindClick, Target: "admin_search_submit", Pause: time.Second},
			{Name: "edit user", Kind: KindClick, Target: "admin_user_edit", Pause: time.Second},
			{Name: "choose plan", Kind: KindSelect, Target: "admin_plan_select", ValueKey: "admin_plan"},
			{Name: "set expiry", Kind: KindInput, Target: "admin_expire_input", ValueKey: "admin_expire_days", Optional: true},
			{Name: "save user", Kind: KindClick, Target: "admin_save", Pause: time.Second},
			{Name: "saved", Kind: KindExpect, Want: []string{"admin_saved"}, Reject: []string{"failure"}},
		},
	}
}

// noBalanceSteps pays with balance on an account that cannot cover the price.
// The flow passes when the site refuses with an insufficient-balance message.
func noBalanceSteps() []Step {
	return []Step{
		{Name: "choose balance", Kind: KindClick, Target: "payment_balance", Pause: 500 * time.Millisecond},
		{Name: "confirm payment", Kind: KindClick, Target: "pay_confirm", Pause: time.Second},
		{Name: "refused for balance", Kind: KindExpect, Want: []string{"insufficient_balance"}, Reject: []string{"success"}},
	}
}

// NoBalancePackage tries to buy a package on an empty balance
func NoBalancePackage() Scenario {
	return Scenario{
		Name:          NameNoBalancePkg,
		Description:   "Package checkout with balance is refused when the balance is empty",
		PaymentMethod: PaymentBalance,
		Steps:         append(packageCheckoutSteps(), noBalanceSteps()...),
	}
}

// NoBalanceOrder tries to settle a pending order on an empty balance
func NoBalanceOrder() Scenario {
	return Scenario{
		Name:          NameNoBalanceOrder,
		Description:   "Pending order payment with balance is refused when the balance is empty",
		PaymentMethod: PaymentBalance,
		Steps:         append(pendingOrderSteps(), noBalanceSteps()...),
	}
}
