package task

import "time"

type funcRunner struct {
	run func() error
}

func (r funcRunner) Run() error {
	return r.run()
}

// NewTickerTaskFromFunc wraps runner in a Runner.
func NewTickerTaskFromFunc(name string, interval time.Duration, runner func() error) *TickerTask {
	return NewTickerTask(name, interval, funcRunner{run: runner})
}
