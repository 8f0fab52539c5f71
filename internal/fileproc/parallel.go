// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panbanda/pysentry/pkg/parser"
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

// Unwrap returns the underlying error.
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
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Option configures a mapping run.
type Option func(*options)

type options struct {
	workers    int
	onProgress ProgressFunc
	onError    ErrorFunc
}

// WithWorkers bounds the number of concurrent workers. Values <= 0 mean
// 2x NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress registers a callback invoked once per file.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.onProgress = fn }
}

// WithErrorHandler registers a callback invoked for each failed file.
func WithErrorHandler(fn ErrorFunc) Option {
	return func(o *options) { o.onError = fn }
}

// PanicError wraps a value recovered from a panicking worker.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// MapFiles processes files in parallel, giving each call a parser owned by
// the calling goroutine. Results keep the order of files; entries for failed
// or cancelled files are the zero value and are reported in the returned
// ProcessingErrors. A panic in fn is recovered and reported as a
// PanicError for that file.
func MapFiles[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error), opts ...Option) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(files))
	errs := &ProcessingErrors{}
	fail := func(path string, err error) {
		errs.Add(path, err)
		if o.onError != nil {
			o.onError(path, err)
		}
	}

	p := pool.New().WithMaxGoroutines(o.workers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if o.onProgress != nil {
					o.onProgress()
				}
			}()

			if err := ctx.Err(); err != nil {
				fail(path, err)
				return nil
			}

			result, err := callSafely(fn, path)
			if err != nil {
				fail(path, err)
				return nil // one file never stops the pool
			}
			results[i] = result
			return nil
		})
	}
	_ = p.Wait()

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

func callSafely[T any](fn func(*parser.Parser, string) (T, error), path string) (result T, err error) {
	psr := parser.New()
	defer psr.Close()
	defer func() {
		if r := recover(); r != nil {
			err = PanicError{Value: r}
		}
	}()
	return fn(psr, path)
}
