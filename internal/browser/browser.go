// Package browser drives Chromium through playwright and provides the shared
// wait/click/input helpers every checkout scenario uses.
package browser

import (
	"fmt"
	"log"
	"sync"

	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/playwright-community/playwright-go"
)

// DefaultArgs are the Chromium flags used for every launch
var DefaultArgs = []string{
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-blink-features=AutomationControlled",
	"--window-size=1366,900",
}

// Session owns the playwright driver, one Chromium instance and one logged-in context
type Session struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	closeOnce sync.Once
	closeErr  error
}

// Install downloads the Chromium build playwright drives
func Install() error {
	return playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
	})
}

// Launch starts Chromium and opens a context carrying the given session cookies
func Launch(cfg *config.BrowserConfig, cookies []playwright.OptionalCookie) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start playwright: %v", models.ErrSetup, err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     DefaultArgs,
	}
	if cfg.SlowMo > 0 {
		launch.SlowMo = ms(cfg.SlowMo)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: failed to launch chromium: %v", models.ErrSetup, err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport:          &playwright.Size{Width: 1366, Height: 900},
	}
	if cfg.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(cfg.UserAgent)
	}

	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("%w: failed to create browser context: %v", models.ErrSetup, err)
	}
	bctx.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))

	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			bctx.Close()
			browser.Close()
			pw.Stop()
			return nil, fmt.Errorf("%w: failed to inject session cookies: %v", models.ErrSetup, err)
		}
	}

	log.Printf("Browser launched (headless=%v, cookies=%d)", cfg.Headless, len(cookies))

	return &Session{
		pw:      pw,
		browser: browser,
		context: bctx,
	}, nil
}

// NewPage opens a tab in the logged-in context
func (s *Session) NewPage() (Page, error) {
	p, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %v", models.ErrSetup, err)
	}
	return WrapPage(p), nil
}

// Close tears down context, browser and driver. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.context.Close(); err != nil {
			log.Printf("Warning: failed to close browser context: %v", err)
		}
		if err := s.browser.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		if err := s.pw.Stop(); err != nil && s.closeErr == nil {
			s.closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		log.Println("Browser closed")
	})
	return s.closeErr
}
