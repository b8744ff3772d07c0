package main

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TaskOutcome is what one per-file task hands back to the orchestrator.
type TaskOutcome struct {
	File   string
	Result FileOptimizationResult
	Err    error
}

type fileTask func(file string) (FileOptimizationResult, error)

func defaultWorkers() int {
	return runtime.NumCPU()
}

// runTasks applies task to every file with at most workers tasks in flight.
// A failing or panicking task only marks its own outcome; siblings keep
// running. The call returns once every dispatched task has settled.
//
// Outcomes are sent over a channel to a single collector goroutine, which is
// the only writer of the returned slice. Order of outcomes is unspecified.
// Cancelling ctx stops dispatching; files not dispatched get ctx.Err().
func runTasks(ctx context.Context, workers int, files []string, task fileTask) []TaskOutcome {
	if workers <= 0 {
		workers = defaultWorkers()
	}

	outcomes := make(chan TaskOutcome, workers)
	collected := make([]TaskOutcome, 0, len(files))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for outcome := range outcomes {
			collected = append(collected, outcome)
		}
	}()

	var g errgroup.Group
	g.SetLimit(workers)

	dispatched := 0
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			outcomes <- runTask(file, task)
			return nil
		})
		dispatched++
	}
	_ = g.Wait()

	for _, file := range files[dispatched:] {
		outcomes <- TaskOutcome{File: file, Err: ctx.Err()}
	}
	close(outcomes)
	<-done

	return collected
}

func runTask(file string, task fileTask) (outcome TaskOutcome) {
	outcome.File = file
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = FileOptimizationResult{}
			outcome.Err = fmt.Errorf("panic: %v", r)
		}
	}()
	outcome.Result, outcome.Err = task(file)
	return outcome
}
