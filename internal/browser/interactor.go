package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
)

// pollInterval is how often page text is re-read while waiting for an indicator
const pollInterval = 500 * time.Millisecond

// Interactor wraps a Page with bounded retries. Every click, input and wait
// goes through here.
type Interactor struct {
	page         Page
	timeout      time.Duration
	attempts     int
	delay        time.Duration
	popupTimeout time.Duration
	debug        bool
}

// NewInteractor creates an interactor for page using the retry budget from cfg
func NewInteractor(page Page, cfg *config.BrowserConfig) *Interactor {
	return &Interactor{
		page:         page,
		timeout:      cfg.Timeout,
		attempts:     cfg.Retries,
		delay:        cfg.RetryDelay,
		popupTimeout: cfg.PopupTimeout,
		debug:        cfg.Debug,
	}
}

// Page returns the wrapped page
func (i *Interactor) Page() Page {
	return i.page
}

// Timeout returns the per-action timeout
func (i *Interactor) Timeout() time.Duration {
	return i.timeout
}

func (i *Interactor) retry(ctx context.Context, what string, fn func() error) (int, error) {
	return Retry(ctx, i.attempts, i.delay, func(attempt int) error {
		err := fn()
		if err != nil && i.debug {
			log.Printf("[debug] %s attempt %d/%d failed: %v", what, attempt, i.attempts, err)
		}
		return err
	})
}

// Navigate loads url in the page
func (i *Interactor) Navigate(ctx context.Context, url string) (int, error) {
	return i.retry(ctx, "goto "+url, func() error {
		return i.page.Goto(url, i.timeout)
	})
}

// WaitForElement waits until selector is visible
func (i *Interactor) WaitForElement(ctx context.Context, selector string) (int, error) {
	return i.retry(ctx, "wait "+selector, func() error {
		return i.page.WaitVisible(selector, i.timeout)
	})
}

// SafeClick clicks selector, retrying on failure. When every regular click
// fails it falls back to a JavaScript click, which gets past overlays and
// elements the browser considers obscured.
func (i *Interactor) SafeClick(ctx context.Context, selector string) (int, error) {
	attempts, err := i.retry(ctx, "click "+selector, func() error {
		if err := i.page.WaitVisible(selector, i.timeout); err != nil {
			return err
		}
		return i.page.Click(selector, i.timeout)
	})
	if err == nil {
		return attempts, nil
	}
	if ctx.Err() != nil {
		return attempts, err
	}

	log.Printf("Regular click on %s failed after %d attempts, trying JavaScript click", selector, attempts)
	if jsErr := i.page.JSClick(selector); jsErr != nil {
		return attempts + 1, fmt.Errorf("click %s: %w", selector, errors.Join(err, jsErr))
	}
	return attempts + 1, nil
}

// SafeInput fills selector with value, retrying on failure
func (i *Interactor) SafeInput(ctx context.Context, selector, value string) (int, error) {
	return i.retry(ctx, "input "+selector, func() error {
		if err := i.page.WaitVisible(selector, i.timeout); err != nil {
			return err
		}
		return i.page.Fill(selector, value, i.timeout)
	})
}

// SafeSelect picks value in the select element at selector, retrying on failure
func (i *Interactor) SafeSelect(ctx context.Context, selector, value string) (int, error) {
	return i.retry(ctx, "select "+selector, func() error {
		return i.page.SelectOption(selector, value, i.timeout)
	})
}

// ContainsAny scans the rendered page for the first matching indicator.
// Matching ignores case.
func (i *Interactor) ContainsAny(indicators []string) (string, bool, error) {
	content, err := i.page.Content()
	if err != nil {
		return "", false, fmt.Errorf("failed to read page content: %w", err)
	}
	text := strings.ToLower(content)
	for _, ind := range indicators {
		if ind != "" && strings.Contains(text, strings.ToLower(ind)) {
			return ind, true, nil
		}
	}
	if url := strings.ToLower(i.page.URL()); url != "" {
		for _, ind := range indicators {
			if ind != "" && strings.Contains(url, strings.ToLower(ind)) {
				return ind, true, nil
			}
		}
	}
	return "", false, nil
}

// WaitForText polls the page until one of want appears. If one of reject
// appears first the wait stops with ErrFailureIndicator; if nothing shows up
// before timeout it stops with ErrIndicatorMissing.
func (i *Interactor) WaitForText(ctx context.Context, want, reject []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = i.timeout
	}
	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		if len(reject) > 0 {
			hit, found, err := i.ContainsAny(reject)
			if err != nil {
				return "", err
			}
			if found {
				return hit, fmt.Errorf("%w: %q", models.ErrFailureIndicator, hit)
			}
		}

		hit, found, err := i.ContainsAny(want)
		if err != nil {
			return "", err
		}
		if found {
			return hit, nil
		}

		if err := sleepCtx(ctx, pollInterval); err != nil {
			if perr := parent.Err(); perr != nil {
				return "", perr
			}
			return "", fmt.Errorf("%w: none of %q within %s", models.ErrIndicatorMissing, want, timeout)
		}
	}
}

// WithPopup clicks trigger, expects a new tab, runs check against it, then
// closes the tab and brings the original page back to the front.
func (i *Interactor) WithPopup(ctx context.Context, trigger string, check func(*Interactor) error) error {
	popup, err := i.page.ExpectPopup(func() error {
		_, err := i.SafeClick(ctx, trigger)
		return err
	}, i.popupTimeout)
	if err != nil {
		if errors.Is(err, models.ErrPopup) {
			return err
		}
		return fmt.Errorf("%w: %w", models.ErrPopup, err)
	}

	log.Printf("Switched to new tab %s", popup.URL())
	child := &Interactor{
		page:         popup,
		timeout:      i.popupTimeout,
		attempts:     i.attempts,
		delay:        i.delay,
		popupTimeout: i.popupTimeout,
		debug:        i.debug,
	}
	checkErr := check(child)

	if err := popup.Close(); err != nil {
		log.Printf("Warning: failed to close popup tab: %v", err)
	}
	if err := i.page.BringToFront(); err != nil {
		log.Printf("Warning: failed to switch back to original tab: %v", err)
	}
	log.Println("Switched back to original tab")

	if checkErr != nil {
		return fmt.Errorf("%w: %w", models.ErrPopup, checkErr)
	}
	return nil
}

// Sleep pauses for d unless ctx ends first
func (i *Interactor) Sleep(ctx context.Context, d time.Duration) error {
	return sleepCtx(ctx, d)
}

// Screenshot saves the current page to path
func (i *Interactor) Screenshot(path string) error {
	return i.page.Screenshot(path)
}
