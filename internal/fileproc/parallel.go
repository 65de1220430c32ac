// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of file reads and CGO parsing.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func(path string)

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Workers returns the worker count used for n <= 0.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return n
}

// MapFiles processes files in parallel and returns the successful results in
// input order. Failed files are reported to onError and left out.
func MapFiles[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, string) (T, error), onProgress ProgressFunc, onError ErrorFunc) []T {
	if len(files) == 0 {
		return nil
	}

	type slot struct {
		value T
		ok    bool
	}
	slots := make([]slot, len(files))

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers))
	for i, path := range files {
		p.Go(func() {
			if onProgress != nil {
				defer onProgress(path)
			}

			if err := ctx.Err(); err != nil {
				if onError != nil {
					onError(path, err)
				}
				return
			}

			result, err := fn(ctx, path)
			if err != nil {
				if onError != nil {
					onError(path, err)
				}
				return
			}
			// Each goroutine owns its own slot.
			slots[i] = slot{value: result, ok: true}
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.value)
		}
	}
	return results
}

// MapFilesCollectErrors processes files in parallel and collects all errors.
// Returns nil errors when every file succeeded.
func MapFilesCollectErrors[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	errs := &ProcessingErrors{}
	results := MapFiles(ctx, files, maxWorkers, fn, onProgress, errs.Add)
	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
