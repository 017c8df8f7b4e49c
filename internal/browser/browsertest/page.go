// Package browsertest provides a scriptable browser.Page for tests.
package browsertest

import (
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
)

var _ browser.Page = (*MockPage)(nil)

// MockPage is a mock implementation of browser.Page for testing
type MockPage struct {
	GotoFunc         func(string) error
	WaitVisibleFunc  func(string) error
	ClickFunc        func(string) error
	JSClickFunc      func(string) error
	FillFunc         func(string, string) error
	SelectOptionFunc func(string, string) error
	ContentFunc      func() (string, error)
	URLValue         string
	ExpectPopupFunc  func(func() error) (browser.Page, error)

	Closed       bool
	BroughtFront bool
	Screenshots  []string
}

func (m *MockPage) Goto(url string, _ time.Duration) error {
	if m.GotoFunc != nil {
		return m.GotoFunc(url)
	}
	m.URLValue = url
	return nil
}

func (m *MockPage) WaitVisible(selector string, _ time.Duration) error {
	if m.WaitVisibleFunc != nil {
		return m.WaitVisibleFunc(selector)
	}
	return nil
}

func (m *MockPage) Click(selector string, _ time.Duration) error {
	if m.ClickFunc != nil {
		return m.ClickFunc(selector)
	}
	return nil
}

func (m *MockPage) JSClick(selector string) error {
	if m.JSClickFunc != nil {
		return m.JSClickFunc(selector)
	}
	return nil
}

func (m *MockPage) Fill(selector, value string, _ time.Duration) error {
	if m.FillFunc != nil {
		return m.FillFunc(selector, value)
	}
	return nil
}

func (m *MockPage) SelectOption(selector, value string, _ time.Duration) error {
	if m.SelectOptionFunc != nil {
		return m.SelectOptionFunc(selector, value)
	}
	return nil
}

func (m *MockPage) Content() (string, error) {
	if m.ContentFunc != nil {
		return m.ContentFunc()
	}
	return "<html></html>", nil
}

func (m *MockPage) URL() string {
	return m.URLValue
}

func (m *MockPage) Screenshot(path string) error {
	m.Screenshots = append(m.Screenshots, path)
	return nil
}

func (m *MockPage) ExpectPopup(trigger func() error, _ time.Duration) (browser.Page, error) {
	if m.ExpectPopupFunc != nil {
		return m.ExpectPopupFunc(trigger)
	}
	if err := trigger(); err != nil {
		return nil, err
	}
	return &MockPage{}, nil
}

func (m *MockPage) BringToFront() error {
	m.BroughtFront = true
	return nil
}

func (m *MockPage) Close() error {
	m.Closed = true
	return nil
}
