package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/checkoutprobe/checkoutprobe/internal/scheduler"
)

// RunSchedule starts sched and blocks until a shutdown signal arrives or ctx
// ends. When runNow is set the suite also runs once immediately.
// If shutdown is nil, a channel is registered with signal.Notify.
func RunSchedule(ctx context.Context, sched *scheduler.Scheduler, runNow bool, shutdown chan os.Signal) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	var wg sync.WaitGroup
	if runNow {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.RunNow(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Initial run failed: %v", err)
			}
		}()
	}

	select {
	case sig := <-shutdown:
		log.Printf("Received signal: %v, stopping scheduler...", sig)
	case <-ctx.Done():
	}

	cancel()
	<-sched.Done()
	wg.Wait()
	return nil
}

// SuiteJob adapts RunSuite to a scheduler job
func SuiteJob(deps RunDependencies) scheduler.Job {
	return func(ctx context.Context) error {
		_, err := RunSuite(ctx, deps)
		return err
	}
}
