package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
	"github.com/checkoutprobe/checkoutprobe/internal/browser/browsertest"
	"github.com/checkoutprobe/checkoutprobe/internal/catalog"
	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
)

func testBrowserConfig(t *testing.T) *config.BrowserConfig {
	t.Helper()
	return &config.BrowserConfig{
		Timeout:       50 * time.Millisecond,
		Retries:       2,
		RetryDelay:    time.Millisecond,
		PopupTimeout:  50 * time.Millisecond,
		ScreenshotDir: t.TempDir(),
	}
}

func testSite() *config.SiteConfig {
	return &config.SiteConfig{
		BaseURL:  "https://shop.example.com",
		AdminURL: "https://shop.example.com/admin",
	}
}

func testRunner(t *testing.T) ScenarioRunner {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	return NewScenarioRunner(testBrowserConfig(t), testSite(), cat)
}

// withoutPauses strips the settle time between steps so tests stay fast
func withoutPauses(sc scenario.Scenario) scenario.Scenario {
	steps := make([]scenario.Step, len(sc.Steps))
	copy(steps, sc.Steps)
	for i := range steps {
		steps[i].Pause = 0
	}
	sc.Steps = steps
	return sc
}

func startRun(t *testing.T, sc scenario.Scenario) *models.Run {
	t.Helper()
	run, err := models.NewRun(sc.Name, string(sc.PaymentMethod))
	if err != nil {
		t.Fatalf("NewRun() error = %v", err)
	}
	return run
}

func TestScenarioRunner_BalancePurchasePasses(t *testing.T) {
	var visited []string
	page := &browsertest.MockPage{
		GotoFunc: func(url string) error {
			visited = append(visited, url)
			return nil
		},
		ContentFunc: func() (string, error) {
			return "<div class='toast'>支付成功</div>", nil
		},
	}

	sc := withoutPauses(scenario.DynamicPackage(scenario.PaymentBalance))
	run := startRun(t, sc)
	if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !run.IsPassed() {
		t.Fatalf("run status = %s (%s), want passed", run.Status, run.Message)
	}
	if len(run.Steps) != len(sc.Steps) {
		t.Errorf("recorded %d steps, want %d", len(run.Steps), len(sc.Steps))
	}
	if len(visited) != 1 || visited[0] != "https://shop.example.com/user/shop" {
		t.Errorf("visited = %v", visited)
	}
}

func TestScenarioRunner_AdminNavigatesAdminPanel(t *testing.T) {
	var visited string
	var selected string
	page := &browsertest.MockPage{
		GotoFunc: func(url string) error {
			visited = url
			return nil
		},
		SelectOptionFunc: func(_, value string) error {
			selected = value
			return nil
		},
		ContentFunc: func() (string, error) { return "保存成功", nil },
	}

	sc := withoutPauses(scenario.AdminPlanActivation())
	run := startRun(t, sc)
	if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !run.IsPassed() {
		t.Fatalf("run status = %s (%s), want passed", run.Status, run.Message)
	}
	if visited != "https://shop.example.com/admin/user" {
		t.Errorf("visited = %q", visited)
	}
	if selected != "1" {
		t.Errorf("selected plan = %q, want 1", selected)
	}
}

func TestScenarioRunner_Failures(t *testing.T) {
	missing := fmt.Errorf("%w: button", models.ErrElementNotFound)

	tests := []struct {
		name      string
		page      func() *browsertest.MockPage
		wantKind  models.FailureKind
		wantSteps int
		wantShot  bool
	}{
		{
			name: "checkout button never appears",
			page: func() *browsertest.MockPage {
				return &browsertest.MockPage{
					WaitVisibleFunc: func(sel string) error {
						if strings.Contains(sel, "checkout-submit") {
							return missing
						}
						return nil
					},
					JSClickFunc: func(string) error { return missing },
				}
			},
			wantKind:  models.FailureElementNotFound,
			wantSteps: 4,
			wantShot:  true,
		},
		{
			name: "site reports payment failure",
			page: func() *browsertest.MockPage {
				return &browsertest.MockPage{
					ContentFunc: func() (string, error) { return "支付失败", nil },
				}
			},
			wantKind:  models.FailureIndicatorFound,
			wantSteps: 7,
			wantShot:  true,
		},
		{
			name: "no success text",
			page: func() *browsertest.MockPage {
				return &browsertest.MockPage{}
			},
			wantKind:  models.FailureIndicatorMissing,
			wantSteps: 7,
			wantShot:  true,
		},
		{
			name: "navigation error",
			page: func() *browsertest.MockPage {
				return &browsertest.MockPage{
					GotoFunc: func(string) error { return fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", models.ErrNavigation) },
				}
			},
			wantKind:  models.FailureNavigation,
			wantSteps: 1,
			wantShot:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := tt.page()
			sc := withoutPauses(scenario.DynamicPackage(scenario.PaymentBalance))
			run := startRun(t, sc)

			if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if run.Status != models.RunStatusFailed {
				t.Fatalf("run status = %s, want failed", run.Status)
			}
			if run.FailureKind != tt.wantKind {
				t.Errorf("failure kind = %s, want %s (%s)", run.FailureKind, tt.wantKind, run.Message)
			}
			if len(run.Steps) != tt.wantSteps {
				t.Errorf("recorded %d steps, want %d", len(run.Steps), tt.wantSteps)
			}
			last := run.Steps[len(run.Steps)-1]
			if last.Passed || last.Error == "" {
				t.Errorf("last step = %+v, want failed with error", last)
			}
			if tt.wantShot && (len(page.Screenshots) != 1 || last.Screenshot != page.Screenshots[0]) {
				t.Errorf("screenshots = %v, step screenshot = %q", page.Screenshots, last.Screenshot)
			}
		})
	}
}

func TestScenarioRunner_OptionalStepSkipped(t *testing.T) {
	page := &browsertest.MockPage{
		WaitVisibleFunc: func(sel string) error {
			if strings.Contains(sel, "period-option") {
				return models.ErrElementNotFound
			}
			return nil
		},
		JSClickFunc: func(string) error { return models.ErrElementNotFound },
		ContentFunc: func() (string, error) { return "Payment successful", nil },
	}

	sc := withoutPauses(scenario.DynamicPackage(scenario.PaymentBalance))
	run := startRun(t, sc)
	if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !run.IsPassed() {
		t.Fatalf("run status = %s (%s), want passed", run.Status, run.Message)
	}

	var skipped int
	for _, st := range run.Steps {
		if st.Skipped {
			skipped++
		}
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestScenarioRunner_AlipayPopup(t *testing.T) {
	popup := &browsertest.MockPage{
		URLValue:    "https://openapi.alipay.com/gateway.do",
		ContentFunc: func() (string, error) { return "<title>支付宝 - 网上支付</title>", nil },
	}
	page := &browsertest.MockPage{
		ExpectPopupFunc: func(trigger func() error) (browser.Page, error) {
			if err := trigger(); err != nil {
				return nil, err
			}
			return popup, nil
		},
	}

	sc := withoutPauses(scenario.PendingOrderPayment(scenario.PaymentAlipay))
	run := startRun(t, sc)
	if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !run.IsPassed() {
		t.Fatalf("run status = %s (%s), want passed", run.Status, run.Message)
	}
	if !popup.Closed || !page.BroughtFront {
		t.Errorf("popup closed = %v, original in front = %v", popup.Closed, page.BroughtFront)
	}
}

func TestScenarioRunner_AlipayPopupNeverOpens(t *testing.T) {
	page := &browsertest.MockPage{
		ExpectPopupFunc: func(func() error) (browser.Page, error) {
			return nil, fmt.Errorf("%w: no new tab", models.ErrTimeout)
		},
	}

	sc := withoutPauses(scenario.DynamicPackage(scenario.PaymentAlipay))
	run := startRun(t, sc)
	if err := testRunner(t).Execute(context.Background(), page, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.FailureKind != models.FailurePopup {
		t.Errorf("failure kind = %s, want popup", run.FailureKind)
	}
}

func TestScenarioRunner_InvalidScenario(t *testing.T) {
	sc := scenario.Scenario{
		Name:  "broken",
		Steps: []scenario.Step{{Name: "press", Kind: scenario.KindClick, Target: "missing_button"}},
	}
	run := startRun(t, sc)

	if err := testRunner(t).Execute(context.Background(), &browsertest.MockPage{}, sc, run); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if run.FailureKind != models.FailureSetup {
		t.Errorf("failure kind = %s, want setup", run.FailureKind)
	}
	if !strings.Contains(run.Message, "missing_button") {
		t.Errorf("message = %q", run.Message)
	}
}

func TestScenarioRunner_RejectsStartedRun(t *testing.T) {
	sc := scenario.AdminPlanActivation()
	run := startRun(t, sc)
	_ = run.Start()

	err := testRunner(t).Execute(context.Background(), &browsertest.MockPage{}, sc, run)
	if !errors.Is(err, models.ErrInvalidStatusTransition) {
		t.Errorf("Execute() error = %v, want ErrInvalidStatusTransition", err)
	}
}
