// Package jobs holds the periodic jobs run by the scheduler.
package jobs

import (
	"context"
	"sort"
	"sync"
)

// Job is a registered job and the id the scheduler assigned to it. A zero
// ID means the job is not scheduled.
type Job struct {
	ID     int
	Runner Runner
}

// Runner is a job runner. An empty Spec disables the job.
type Runner interface {
	Spec(context.Context) string
	Func(context.Context) func()
}

var (
	mtx  sync.Mutex
	jobs = make(map[string]*Job)
)

// Register registers a job under name, replacing any job with that name.
func Register(name string, runner Runner) {
	mtx.Lock()
	defer mtx.Unlock()
	jobs[name] = &Job{Runner: runner}
}

// List returns a snapshot of the registered jobs keyed by name.
func List() map[string]*Job {
	mtx.Lock()
	defer mtx.Unlock()
	m := make(map[string]*Job, len(jobs))
	for name, j := range jobs {
		m[name] = j
	}
	return m
}

// Names returns the sorted names of the registered jobs.
func Names() []string {
	mtx.Lock()
	defer mtx.Unlock()
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
