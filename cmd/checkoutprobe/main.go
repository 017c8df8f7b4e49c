package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/checkoutprobe/checkoutprobe/internal/browser"
	"github.com/checkoutprobe/checkoutprobe/internal/catalog"
	internalcli "github.com/checkoutprobe/checkoutprobe/internal/cli"
	"github.com/checkoutprobe/checkoutprobe/internal/config"
	"github.com/checkoutprobe/checkoutprobe/internal/database"
	"github.com/checkoutprobe/checkoutprobe/internal/handlers"
	"github.com/checkoutprobe/checkoutprobe/internal/report"
	"github.com/checkoutprobe/checkoutprobe/internal/repository"
	"github.com/checkoutprobe/checkoutprobe/internal/scenario"
	"github.com/checkoutprobe/checkoutprobe/internal/scheduler"
	"github.com/checkoutprobe/checkoutprobe/internal/services"
	"github.com/checkoutprobe/checkoutprobe/internal/session"
)

var version = "0.1.0"

// suiteFlags are shared by run and schedule
var suiteFlags = []cli.Flag{
	&cli.BoolFlag{Name: "headless", Usage: "run Chromium without a window (default true, env HEADLESS)"},
	&cli.DurationFlag{Name: "timeout", Usage: "per-action browser timeout (default 10s, env BROWSER_TIMEOUT)"},
	&cli.BoolFlag{Name: "debug", Usage: "log every attempt with file and line"},
	&cli.StringFlag{Name: "payment-method", Aliases: []string{"m"}, Value: "all", Usage: "balance, alipay, wechat or all"},
	&cli.StringSliceFlag{Name: "scenario", Aliases: []string{"s"}, Usage: "scenario names to run, comma separated (default all)"},
	&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 1, Usage: "scenarios to run at once, each in its own tab"},
	&cli.StringFlag{Name: "catalog", Usage: "selector catalog overriding the built-in one (env CATALOG_FILE)"},
	&cli.StringFlag{Name: "cookies", Usage: "session cookie file, YAML or JSON (env COOKIE_FILE)"},
	&cli.StringFlag{Name: "report", Usage: "write an HTML report to this path"},
	&cli.StringFlag{Name: "markdown", Usage: "write a markdown report to this path"},
}

// flagEnv returns a getenv that prefers explicitly set flags over the environment
func flagEnv(c *cli.Context) func(string) string {
	overrides := make(map[string]string)
	if c.IsSet("headless") {
		overrides["HEADLESS"] = strconv.FormatBool(c.Bool("headless"))
	}
	if c.IsSet("timeout") {
		overrides["BROWSER_TIMEOUT"] = c.Duration("timeout").String()
	}
	if c.IsSet("debug") {
		overrides["DEBUG"] = strconv.FormatBool(c.Bool("debug"))
	}
	if c.IsSet("catalog") {
		overrides["CATALOG_FILE"] = c.String("catalog")
	}
	if c.IsSet("cookies") {
		overrides["COOKIE_FILE"] = c.String("cookies")
	}
	if c.IsSet("schedule") {
		overrides["SCHEDULE"] = c.String("schedule")
	}
	return func(key string) string {
		if v, ok := overrides[key]; ok {
			return v
		}
		return os.Getenv(key)
	}
}

// openHistory connects the history store. It returns a nil repository when
// history is disabled.
func openHistory(getenv func(string) string) (services.RunRepository, func(), error) {
	storeConfig, err := config.LoadStoreConfig(getenv)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid history configuration: %w", err)
	}
	if !storeConfig.Enabled() {
		log.Println("Run history disabled")
		return nil, func() {}, nil
	}

	if err := database.Connect(storeConfig); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Printf("Connected to %s history store", storeConfig.Driver)

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	return repository.NewRunRepository(), func() { database.Close() }, nil
}

// buildRunDependencies wires configuration, catalog, history and the browser
// launcher for the run and schedule commands
func buildRunDependencies(c *cli.Context, getenv func(string) string) (internalcli.RunDependencies, func(), error) {
	var deps internalcli.RunDependencies

	browserConfig, err := config.LoadBrowserConfig(getenv)
	if err != nil {
		return deps, nil, fmt.Errorf("invalid browser configuration: %w", err)
	}
	if browserConfig.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	siteConfig, err := config.LoadSiteConfig(getenv)
	if err != nil {
		return deps, nil, fmt.Errorf("missing required site configuration: %w", err)
	}

	cat, err := catalog.Load(siteConfig.CatalogFile)
	if err != nil {
		return deps, nil, err
	}

	scenarios, err := scenario.Select(c.StringSlice("scenario"), c.String("payment-method"))
	if err != nil {
		return deps, nil, err
	}
	for _, sc := range scenarios {
		if err := sc.Validate(cat); err != nil {
			return deps, nil, fmt.Errorf("scenario %s does not match the catalog: %w", sc.Label(), err)
		}
	}

	// Fail fast on a broken cookie file before any browser starts
	if _, err := session.LoadCookies(siteConfig.CookieFile, siteConfig.StrictCookies); err != nil {
		return deps, nil, err
	}

	runRepo, closeHistory, err := openHistory(getenv)
	if err != nil {
		return deps, nil, err
	}

	runner := services.NewScenarioRunner(browserConfig, siteConfig, cat)
	notifier := services.NewNotifier(config.LoadNotifyConfig(getenv))

	deps.RunService = services.NewRunService(runner, runRepo, notifier, c.Int("parallel"))
	deps.Scenarios = scenarios
	deps.ReportPath = c.String("report")
	deps.MarkdownPath = c.String("markdown")
	deps.Launch = func() (internalcli.BrowserSession, error) {
		// Reloaded per launch so a scheduled run picks up refreshed cookies
		cookies, err := session.LoadCookies(siteConfig.CookieFile, siteConfig.StrictCookies)
		if err != nil {
			return nil, err
		}
		s, err := browser.Launch(browserConfig, session.ToPlaywright(cookies, siteConfig.Host()))
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	return deps, closeHistory, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the checkout scenarios once",
		Flags: suiteFlags,
		Action: func(c *cli.Context) error {
			deps, closeHistory, err := buildRunDependencies(c, flagEnv(c))
			if err != nil {
				return err
			}
			defer closeHistory()

			ctx, stop := signalContext()
			defer stop()

			_, err = internalcli.RunSuite(ctx, deps)
			if errors.Is(err, internalcli.ErrSuiteFailed) {
				return cli.Exit(err.Error(), 1)
			}
			return err
		},
	}
}

// ScheduleCommand returns the schedule command
func ScheduleCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "schedule", Usage: "cron spec, five fields or @daily style (env SCHEDULE, default \"0 9 * * *\")"},
		&cli.BoolFlag{Name: "now", Usage: "also run once right away"},
	}, suiteFlags...)

	return &cli.Command{
		Name:  "schedule",
		Usage: "Run the checkout scenarios on a cron schedule until interrupted",
		Flags: flags,
		Action: func(c *cli.Context) error {
			getenv := flagEnv(c)
			scheduleConfig, err := config.LoadScheduleConfig(getenv)
			if err != nil {
				return err
			}
			if err := scheduler.Validate(scheduleConfig.Spec); err != nil {
				return err
			}

			deps, closeHistory, err := buildRunDependencies(c, getenv)
			if err != nil {
				return err
			}
			defer closeHistory()

			sched := scheduler.New(scheduleConfig, internalcli.SuiteJob(deps))
			return internalcli.RunSchedule(context.Background(), sched, c.Bool("now"), nil)
		},
	}
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the run history report server",
		Action: func(c *cli.Context) error {
			getenv := os.Getenv
			runRepo, closeHistory, err := openHistory(getenv)
			if err != nil {
				return err
			}
			defer closeHistory()

			browserConfig, err := config.LoadBrowserConfig(getenv)
			if err != nil {
				return fmt.Errorf("invalid browser configuration: %w", err)
			}

			tmpl, err := report.Templates(true)
			if err != nil {
				return err
			}
			runService := services.NewRunService(nil, runRepo, nil, 1)

			return internalcli.RunServe(internalcli.ServerDependencies{
				ServerConfig:   config.LoadServerConfig(getenv),
				RunsHandler:    handlers.NewRunsHandler(tmpl, runService),
				RunHandler:     handlers.NewRunHandler(tmpl, runService),
				RunsAPIHandler: handlers.NewRunsAPIHandler(runService),
				ScreenshotDir:  browserConfig.ScreenshotDir,
			})
		},
	}
}

// HistoryCommand returns the history command
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print recent runs from the history store",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "number of runs to show"},
		},
		Action: func(c *cli.Context) error {
			runRepo, closeHistory, err := openHistory(os.Getenv)
			if err != nil {
				return err
			}
			defer closeHistory()

			runs, err := services.NewRunService(nil, runRepo, nil, 1).RecentRuns(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}
			report.PrintHistory(os.Stdout, runs)
			return nil
		},
	}
}

// ScenariosCommand returns the scenarios command
func ScenariosCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenarios",
		Usage: "List the built-in scenarios",
		Action: func(c *cli.Context) error {
			table := report.NewTable(os.Stdout)
			table.Header("Name", "Per payment method", "Description")
			for _, d := range scenario.Definitions() {
				if err := table.Append([]string{d.Name, strconv.FormatBool(d.PerMethod), d.Description}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

// InstallCommand returns the install command
func InstallCommand() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Download the Chromium build driven by the scenarios",
		Action: func(c *cli.Context) error {
			if err := browser.Install(); err != nil {
				return fmt.Errorf("failed to install browser: %w", err)
			}
			log.Println("Browser installed")
			return nil
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "checkoutprobe",
		Usage:   "Browser-driven checks of a shop's checkout flows",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(),
			ScheduleCommand(),
			ServeCommand(),
			HistoryCommand(),
			ScenariosCommand(),
			InstallCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
