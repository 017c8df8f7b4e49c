package browser_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
	"github.com/checkoutprobe/checkoutprobe/internal/browser/browsertest"
	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

func testConfig() *config.BrowserConfig {
	return &config.BrowserConfig{
		Timeout:      50 * time.Millisecond,
		Retries:      2,
		RetryDelay:   time.Millisecond,
		PopupTimeout: 50 * time.Millisecond,
	}
}

var errNotFound = fmt.Errorf("%w: #buy", models.ErrElementNotFound)

func TestInteractor_SafeClick(t *testing.T) {
	tests := []struct {
		name         string
		clickFails   int
		jsErr        error
		wantAttempts int
		wantJS       bool
		wantErr      bool
	}{
		{
			name:         "first click succeeds",
			clickFails:   0,
			wantAttempts: 1,
		},
		{
			name:         "second click succeeds",
			clickFails:   1,
			wantAttempts: 2,
		},
		{
			name:         "falls back to javascript click",
			clickFails:   10,
			wantAttempts: 3,
			wantJS:       true,
		},
		{
			name:         "javascript click also fails",
			clickFails:   10,
			jsErr:        errNotFound,
			wantAttempts: 3,
			wantJS:       true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clicks := 0
			jsCalled := false
			page := &browsertest.MockPage{
				ClickFunc: func(string) error {
					clicks++
					if clicks <= tt.clickFails {
						return errNotFound
					}
					return nil
				},
				JSClickFunc: func(string) error {
					jsCalled = true
					return tt.jsErr
				},
			}

			attempts, err := browser.NewInteractor(page, testConfig()).SafeClick(context.Background(), "#buy")

			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeClick() error = %v, wantErr %v", err, tt.wantErr)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if jsCalled != tt.wantJS {
				t.Errorf("javascript click called = %v, want %v", jsCalled, tt.wantJS)
			}
			if err != nil && !errors.Is(err, models.ErrElementNotFound) {
				t.Errorf("expected ErrElementNotFound in chain, got %v", err)
			}
		})
	}
}

func TestInteractor_SafeClickStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	jsCalled := false
	page := &browsertest.MockPage{
		ClickFunc: func(string) error {
			cancel()
			return errNotFound
		},
		JSClickFunc: func(string) error {
			jsCalled = true
			return nil
		},
	}

	if _, err := browser.NewInteractor(page, testConfig()).SafeClick(ctx, "#buy"); err == nil {
		t.Fatal("expected error after cancellation")
	}
	if jsCalled {
		t.Error("javascript fallback must not run once the context is cancelled")
	}
}

func TestInteractor_SafeInput(t *testing.T) {
	var filled string
	page := &browsertest.MockPage{
		FillFunc: func(sel, value string) error {
			filled = value
			return nil
		},
	}
	attempts, err := browser.NewInteractor(page, testConfig()).SafeInput(context.Background(), "#email", "a@b.c")
	if err != nil {
		t.Fatalf("SafeInput() error = %v", err)
	}
	if attempts != 1 || filled != "a@b.c" {
		t.Errorf("attempts=%d filled=%q", attempts, filled)
	}

	page.WaitVisibleFunc = func(string) error { return errNotFound }
	attempts, err = browser.NewInteractor(page, testConfig()).SafeInput(context.Background(), "#email", "x")
	if !errors.Is(err, models.ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestInteractor_ContainsAny(t *testing.T) {
	page := &browsertest.MockPage{
		ContentFunc: func() (string, error) {
			return "<div class='toast'>支付成功 - Payment Successful</div>", nil
		},
		URLValue: "https://openapi.alipay.com/gateway.do",
	}
	in := browser.NewInteractor(page, testConfig())

	hit, ok, err := in.ContainsAny([]string{"payment successful"})
	if err != nil || !ok || hit != "payment successful" {
		t.Errorf("case-insensitive match failed: %q %v %v", hit, ok, err)
	}

	hit, ok, _ = in.ContainsAny([]string{"alipay.com"})
	if !ok || hit != "alipay.com" {
		t.Error("indicator in URL should match")
	}

	if _, ok, _ = in.ContainsAny([]string{"余额不足"}); ok {
		t.Error("unexpected match")
	}

	page.ContentFunc = func() (string, error) { return "", errors.New("target closed") }
	if _, _, err = in.ContainsAny([]string{"x"}); err == nil {
		t.Error("expected content error")
	}
}

func TestInteractor_WaitForText(t *testing.T) {
	t.Run("appears after a few polls", func(t *testing.T) {
		reads := 0
		page := &browsertest.MockPage{ContentFunc: func() (string, error) {
			reads++
			if reads > 2 {
				return "订单 购买成功", nil
			}
			return "loading", nil
		}}
		hit, err := browser.NewInteractor(page, testConfig()).WaitForText(context.Background(), []string{"购买成功"}, nil, 5*time.Second)
		if err != nil || hit != "购买成功" {
			t.Fatalf("WaitForText() = %q, %v", hit, err)
		}
	})

	t.Run("reject wins", func(t *testing.T) {
		page := &browsertest.MockPage{ContentFunc: func() (string, error) {
			return "余额不足 支付成功", nil
		}}
		_, err := browser.NewInteractor(page, testConfig()).WaitForText(context.Background(), []string{"支付成功"}, []string{"余额不足"}, time.Second)
		if !errors.Is(err, models.ErrFailureIndicator) {
			t.Fatalf("expected ErrFailureIndicator, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		page := &browsertest.MockPage{}
		_, err := browser.NewInteractor(page, testConfig()).WaitForText(context.Background(), []string{"支付成功"}, nil, 20*time.Millisecond)
		if !errors.Is(err, models.ErrIndicatorMissing) {
			t.Fatalf("expected ErrIndicatorMissing, got %v", err)
		}
		if !strings.Contains(err.Error(), "支付成功") {
			t.Errorf("error should name the indicator: %v", err)
		}
	})

	t.Run("caller cancels", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		page := &browsertest.MockPage{}
		_, err := browser.NewInteractor(page, testConfig()).WaitForText(ctx, []string{"支付成功"}, nil, 5*time.Second)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if errors.Is(err, models.ErrIndicatorMissing) {
			t.Errorf("cancellation reported as a missing indicator: %v", err)
		}
	})
}

func TestInteractor_WithPopup(t *testing.T) {
	popup := &browsertest.MockPage{
		URLValue:    "https://excashier.alipay.com/standard/auth.htm",
		ContentFunc: func() (string, error) { return "支付宝 收银台", nil },
	}
	triggered := false
	page := &browsertest.MockPage{
		ClickFunc: func(string) error { triggered = true; return nil },
		ExpectPopupFunc: func(trigger func() error) (browser.Page, error) {
			if err := trigger(); err != nil {
				return nil, err
			}
			return popup, nil
		},
	}

	err := browser.NewInteractor(page, testConfig()).WithPopup(context.Background(), "#pay", func(child *browser.Interactor) error {
		_, err := child.WaitForText(context.Background(), []string{"支付宝"}, nil, time.Second)
		return err
	})
	if err != nil {
		t.Fatalf("WithPopup() error = %v", err)
	}
	if !triggered {
		t.Error("trigger was not clicked")
	}
	if !popup.Closed {
		t.Error("popup should be closed")
	}
	if !page.BroughtFront {
		t.Error("original tab should be brought back")
	}
}

func TestInteractor_WithPopupErrors(t *testing.T) {
	page := &browsertest.MockPage{
		ExpectPopupFunc: func(func() error) (browser.Page, error) {
			return nil, fmt.Errorf("%w: new tab: %w", models.ErrPopup, models.ErrTimeout)
		},
	}
	err := browser.NewInteractor(page, testConfig()).WithPopup(context.Background(), "#pay", func(*browser.Interactor) error { return nil })
	if models.Classify(err) != models.FailurePopup {
		t.Errorf("Classify() = %s, want popup", models.Classify(err))
	}

	popup := &browsertest.MockPage{}
	page = &browsertest.MockPage{ExpectPopupFunc: func(func() error) (browser.Page, error) { return popup, nil }}
	err = browser.NewInteractor(page, testConfig()).WithPopup(context.Background(), "#pay", func(*browser.Interactor) error {
		return fmt.Errorf("cashier: %w", models.ErrIndicatorMissing)
	})
	if models.Classify(err) != models.FailureIndicatorMissing {
		t.Errorf("Classify() = %s, want indicator_missing", models.Classify(err))
	}
	if !popup.Closed || !page.BroughtFront {
		t.Error("popup must be cleaned up even when the check fails")
	}
}
