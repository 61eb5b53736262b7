package task

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
)

// Runner is one unit of periodic work.
type Runner interface {
	Run() error
}

// TickerTask runs a Runner now and then once per interval until stopped.
type TickerTask struct {
	name           string
	interval       time.Duration
	runner         Runner
	clock          clock.Clock
	skipInitialRun bool
	done           chan struct{}
	stopOnce       sync.Once
}

func NewTickerTask(name string, interval time.Duration, runner Runner) *TickerTask {
	return NewTickerTaskWithOptions(Options{
		Name:     name,
		Interval: interval,
		Runner:   runner,
	})
}

type Options struct {
	Name           string
	Interval       time.Duration
	Runner         Runner
	Clock          clock.Clock
	SkipInitialRun bool
}

func NewTickerTaskWithOptions(opt Options) *TickerTask {
	if opt.Clock == nil {
		opt.Clock = clock.New()
	}
	return &TickerTask{
		name:           opt.Name,
		interval:       opt.Interval,
		runner:         opt.Runner,
		clock:          opt.Clock,
		skipInitialRun: opt.SkipInitialRun,
		done:           make(chan struct{}),
	}
}

// Start runs the task immediately and then schedules the task to run periodically
// if a positive interval has been specified. It returns once the first run is over.
func (t *TickerTask) Start() {
	if !t.skipInitialRun {
		t.run()
	}

	if t.interval > 0 {
		go t.runRecurring(t.clock.Ticker(t.interval))
	}
}

// Stop stops the periodic task. A run in progress is not interrupted. Calling Stop more than once is a no-op.
func (t *TickerTask) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

// Done exports readonly done channel
func (t *TickerTask) Done() <-chan struct{} {
	return t.done
}

func (t *TickerTask) run() {
	if err := t.runner.Run(); err != nil {
		glog.Errorf("Task %s failed: %v", t.name, err)
	}
}

// runRecurring executes the task on each tick until the task is stopped.
func (t *TickerTask) runRecurring(ticker *clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			t.run()
		case <-t.done:
			return
		}
	}
}
