package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
	"github.com/checkoutprobe/checkoutprobe/internal/catalog"
	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/models"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
)

// ScenarioRunner drives one scenario through a browser page
type ScenarioRunner interface {
	Execute(ctx context.Context, page browser.Page, sc scenario.Scenario, run *models.Run) error
}

// ScenarioRunnerImpl implements ScenarioRunner
type ScenarioRunnerImpl struct {
	browserCfg *config.BrowserConfig
	site       *config.SiteConfig
	catalog    *catalog.Catalog
}

// NewScenarioRunner creates a runner that resolves step targets against cat
func NewScenarioRunner(browserCfg *config.BrowserConfig, site *config.SiteConfig, cat *catalog.Catalog) ScenarioRunner {
	return &ScenarioRunnerImpl{
		browserCfg: browserCfg,
		site:       site,
		catalog:    cat,
	}
}

// Execute runs every step of sc in order and moves run to a terminal status.
// The first failing step that is not optional ends the scenario. The returned
// error only reports run state problems; a failing scenario is recorded on run.
func (r *ScenarioRunnerImpl) Execute(ctx context.Context, page browser.Page, sc scenario.Scenario, run *models.Run) error {
	if err := run.Start(); err != nil {
		return err
	}
	log.Printf("Starting scenario %s (%d steps)", run.Label(), len(sc.Steps))

	if err := sc.Validate(r.catalog); err != nil {
		return run.Fail(models.FailureSetup, err.Error())
	}

	in := browser.NewInteractor(page, r.browserCfg)
	for i, st := range sc.Steps {
		started := time.Now()
		attempts, err := r.executeStep(ctx, in, st)
		result := models.StepResult{
			Name:     st.Name,
			Passed:   err == nil,
			Attempts: attempts,
			Duration: time.Since(started),
		}

		if err != nil && st.Optional && ctx.Err() == nil {
			log.Printf("  [%d] %s skipped: %v", i+1, st.Name, err)
			result.Skipped = true
			result.Error = err.Error()
			run.AddStep(result)
			continue
		}

		if err != nil {
			result.Error = err.Error()
			result.Screenshot = r.capture(in, run, i+1)
			run.AddStep(result)

			kind := models.Classify(err)
			log.Printf("  [%d] %s failed (%s): %v", i+1, st.Name, kind, err)
			return run.Fail(kind, fmt.Sprintf("step %q: %v", st.Name, err))
		}

		log.Printf("  [%d] %s ok", i+1, st.Name)
		run.AddStep(result)

		if st.Pause > 0 {
			if err := in.Sleep(ctx, st.Pause); err != nil {
				return run.Fail(models.Classify(err), fmt.Sprintf("interrupted after step %q: %v", st.Name, err))
			}
		}
	}

	log.Printf("Scenario %s passed", run.Label())
	return run.Pass()
}

func (r *ScenarioRunnerImpl) executeStep(ctx context.Context, in *browser.Interactor, st scenario.Step) (int, error) {
	switch st.Kind {
	case scenario.KindNavigate:
		path, err := r.catalog.Path(st.Target)
		if err != nil {
			return 0, err
		}
		url := r.site.URL(path)
		if st.Base == scenario.BaseAdmin {
			url = r.site.Admin(path)
		}
		return in.Navigate(ctx, url)

	case scenario.KindClick:
		sel, err := r.catalog.Selector(st.Target)
		if err != nil {
			return 0, err
		}
		return in.SafeClick(ctx, sel)

	case scenario.KindWait:
		sel, err := r.catalog.Selector(st.Target)
		if err != nil {
			return 0, err
		}
		return in.WaitForElement(ctx, sel)

	case scenario.KindInput, scenario.KindSelect:
		sel, err := r.catalog.Selector(st.Target)
		if err != nil {
			return 0, err
		}
		value, err := r.stepValue(st)
		if err != nil {
			return 0, err
		}
		if st.Kind == scenario.KindSelect {
			return in.SafeSelect(ctx, sel, value)
		}
		return in.SafeInput(ctx, sel, value)

	case scenario.KindSleep:
		return 1, in.Sleep(ctx, st.Pause)

	case scenario.KindExpect:
		want, reject, err := r.indicators(st)
		if err != nil {
			return 0, err
		}
		hit, err := in.WaitForText(ctx, want, reject, st.Timeout)
		if err == nil {
			log.Printf("  found %q", hit)
		}
		return 1, err

	case scenario.KindPopup:
		sel, err := r.catalog.Selector(st.Target)
		if err != nil {
			return 0, err
		}
		want, reject, err := r.indicators(st)
		if err != nil {
			return 0, err
		}
		err = in.WithPopup(ctx, sel, func(child *browser.Interactor) error {
			hit, err := child.WaitForText(ctx, want, reject, st.Timeout)
			if err == nil {
				log.Printf("  popup shows %q", hit)
			}
			return err
		})
		return 1, err
	}

	return 0, fmt.Errorf("unknown step kind %q", st.Kind)
}

func (r *ScenarioRunnerImpl) stepValue(st scenario.Step) (string, error) {
	if st.ValueKey == "" {
		return st.Value, nil
	}
	return r.catalog.Value(st.ValueKey)
}

func (r *ScenarioRunnerImpl) indicators(st scenario.Step) (want, reject []string, err error) {
	for _, key := range st.Want {
		texts, err := r.catalog.Indicators(key)
		if err != nil {
			return nil, nil, err
		}
		want = append(want, texts...)
	}
	for _, key := range st.Reject {
		texts, err := r.catalog.Indicators(key)
		if err != nil {
			return nil, nil, err
		}
		reject = append(reject, texts...)
	}
	if len(want) == 0 {
		return nil, nil, errors.New("step has no success indicators")
	}
	return want, reject, nil
}

// capture saves a screenshot of the failing page when a screenshot dir is set
func (r *ScenarioRunnerImpl) capture(in *browser.Interactor, run *models.Run, step int) string {
	if r.browserCfg.ScreenshotDir == "" {
		return ""
	}
	if err := os.MkdirAll(r.browserCfg.ScreenshotDir, 0o755); err != nil {
		log.Printf("Warning: failed to create screenshot dir: %v", err)
		return ""
	}
	name := fmt.Sprintf("%s-step%02d.png", strings.ReplaceAll(run.Reference, " ", "_"), step)
	path := filepath.Join(r.browserCfg.ScreenshotDir, name)
	if err := in.Screenshot(path); err != nil {
		log.Printf("Warning: failed to save screenshot: %v", err)
		return ""
	}
	log.Printf("  screenshot saved to %s", path)
	return path
}
