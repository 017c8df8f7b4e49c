package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/playwright-community/playwright-go"
)

// Page is the slice of browser tab behaviour the checkout scenarios rely on
type Page interface {
	Goto(url string, timeout time.Duration) error
	WaitVisible(selector string, timeout time.Duration) error
	Click(selector string, timeout time.Duration) error
	JSClick(selector string) error
	Fill(selector, value string, timeout time.Duration) error
	SelectOption(selector, value string, timeout time.Duration) error
	Content() (string, error)
	URL() string
	Screenshot(path string) error
	ExpectPopup(trigger func() error, timeout time.Duration) (Page, error)
	BringToFront() error
	Close() error
}

// playwrightPage implements Page on a playwright tab
type playwrightPage struct {
	page playwright.Page
}

// WrapPage adapts a playwright page
func WrapPage(p playwright.Page) Page {
	return &playwrightPage{page: p}
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// translate maps playwright errors onto the failure sentinels
func translate(err error, sentinel error, target string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", sentinel, target, models.ErrTimeout)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, target, err)
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   ms(timeout),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return translate(err, models.ErrNavigation, url)
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	return translate(err, models.ErrElementNotFound, selector)
}

func (p *playwrightPage) Click(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: ms(timeout),
	})
	return translate(err, models.ErrElementNotFound, selector)
}

// JSClick dispatches a DOM click, bypassing overlay and visibility checks
func (p *playwrightPage) JSClick(selector string) error {
	_, err := p.page.Locator(selector).First().Evaluate("el => el.click()", nil)
	return translate(err, models.ErrElementNotFound, selector)
}

func (p *playwrightPage) Fill(selector, value string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: ms(timeout),
	})
	return translate(err, models.ErrElementNotFound, selector)
}

func (p *playwrightPage) SelectOption(selector, value string, timeout time.Duration) error {
	_, err := p.page.Locator(selector).First().SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	}, playwright.LocatorSelectOptionOptions{
		Timeout: ms(timeout),
	})
	return translate(err, models.ErrElementNotFound, selector)
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// ExpectPopup runs trigger and returns the tab it opened
func (p *playwrightPage) ExpectPopup(trigger func() error, timeout time.Duration) (Page, error) {
	popup, err := p.page.ExpectPopup(trigger, playwright.PageExpectPopupOptions{
		Timeout: ms(timeout),
	})
	if err != nil {
		return nil, translate(err, models.ErrPopup, "new tab")
	}
	if err := popup.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: ms(timeout),
	}); err != nil {
		return nil, translate(err, models.ErrPopup, popup.URL())
	}
	return &playwrightPage{page: popup}, nil
}

func (p *playwrightPage) BringToFront() error {
	return p.page.BringToFront()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}
