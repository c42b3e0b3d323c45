// Package worker coordinates parallel chapter translation: it owns the job
// queue, the worker pool, credential rotation with per-credential circuit
// breakers, and the per-chapter status map.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"noveltrans/internal/archive"
	"noveltrans/internal/chapter"
	"noveltrans/internal/credential"
	"noveltrans/internal/glossary"
	"noveltrans/internal/progress"
	"noveltrans/internal/prompt"
	"noveltrans/internal/provider"
)

// Worker pool limits.
const (
	DefaultWorkers = 3
	MaxWorkers     = 10

	defaultPerCredential  = 2
	defaultBreakerTimeout = 60 * time.Second
	breakerTripFailures   = 3
)

// ErrConfig marks a coordinator misconfiguration detected before any work
// starts.
var ErrConfig = errors.New("invalid coordinator configuration")

// Config assembles the collaborators for one translation run.
type Config struct {
	Novel string

	// Providers holds one client per credential, indexed by
	// credential.Credential.Index.
	Providers []provider.Provider
	Rotator   *credential.Rotator

	Glossary *glossary.Store
	Ledger   *progress.Ledger
	Library  *chapter.Library
	Prompts  *prompt.Builder

	// Archive is optional; when nil no archive records are written.
	Archive *archive.Store

	Workers int
	// PerCredentialConcurrency caps how many workers may share one
	// credential. Zero means the default of 2.
	PerCredentialConcurrency int
	Force                    bool
	BreakerTimeout           time.Duration
}

// Result reports the outcome of a run.
type Result struct {
	CompletedChapters []int
	Skipped           []int
	Failed            map[int]error
	Stats             progress.Stats
	Keys              credential.Status
}

// Coordinator runs translation jobs across a pool of workers.
type Coordinator struct {
	cfg      Config
	breakers []*gobreaker.CircuitBreaker
}

// NewCoordinator validates the configuration and builds the per-credential
// circuit breakers. Validation failures wrap ErrConfig.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.Novel == "" {
		return nil, fmt.Errorf("%w: novel name is required", ErrConfig)
	}
	if len(cfg.Providers) == 0 || cfg.Rotator == nil {
		return nil, fmt.Errorf("%w: at least one credential and provider is required", ErrConfig)
	}
	if cfg.Rotator.Len() != len(cfg.Providers) {
		return nil, fmt.Errorf("%w: %d credentials but %d providers",
			ErrConfig, cfg.Rotator.Len(), len(cfg.Providers))
	}
	if cfg.Glossary == nil || cfg.Ledger == nil || cfg.Library == nil || cfg.Prompts == nil {
		return nil, fmt.Errorf("%w: glossary, ledger, library and prompts are all required", ErrConfig)
	}

	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.PerCredentialConcurrency == 0 {
		cfg.PerCredentialConcurrency = defaultPerCredential
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfig, cfg.Workers)
	}
	if limit := len(cfg.Providers) * cfg.PerCredentialConcurrency; cfg.Workers > limit {
		return nil, fmt.Errorf("%w: %d workers exceed %d credentials x %d concurrency",
			ErrConfig, cfg.Workers, len(cfg.Providers), cfg.PerCredentialConcurrency)
	}

	c := &Coordinator{cfg: cfg}
	for i := range cfg.Providers {
		c.breakers = append(c.breakers, gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    fmt.Sprintf("credential-%d", i),
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTripFailures
			},
		}))
	}
	return c, nil
}

// RunParallel translates the given chapters with the configured worker pool.
// Already-completed chapters are skipped unless Force is set. Cancellation
// stops dispatch; chapters already in flight finish and are recorded.
func (c *Coordinator) RunParallel(ctx context.Context, chapters []int) (Result, error) {
	return c.run(ctx, chapters, c.cfg.Workers)
}

// RunSerial translates the chapters one at a time in order.
func (c *Coordinator) RunSerial(ctx context.Context, chapters []int) (Result, error) {
	return c.run(ctx, chapters, 1)
}

func (c *Coordinator) run(ctx context.Context, chapters []int, workers int) (Result, error) {
	completed := map[int]bool{}
	if !c.cfg.Force {
		completed = c.cfg.Ledger.CompletedSet()
	}
	queue := BuildQueue(chapters, completed)
	tracker := newStatusTracker(queue)

	if len(queue) == 0 {
		res := c.collect(tracker)
		return res, nil
	}
	if workers > len(queue) {
		workers = len(queue)
	}

	fmt.Printf("Translating %d chapter(s) of %q with %d worker(s)\n",
		len(queue), c.cfg.Novel, workers)

	jobs := feed(queue)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case num, ok := <-jobs:
					if !ok {
						return
					}
					c.process(ctx, num, tracker)
				}
			}
		}()
	}
	wg.Wait()

	return c.collect(tracker), ctx.Err()
}

// collect builds the run result, folding the tracker's per-state counts
// into the ledger's completion statistics.
func (c *Coordinator) collect(tracker *statusTracker) Result {
	res := tracker.result()
	res.Stats = c.cfg.Ledger.Stats()
	pending, inProgress, completed, failed := tracker.counts()
	res.Stats.Total = pending + inProgress + completed + failed
	res.Stats.InProgress = inProgress
	res.Stats.Failed = failed
	res.Keys = c.cfg.Rotator.Status()
	return res
}

// process runs the full pipeline for one chapter. Term extraction failures
// are logged but never fail the chapter.
func (c *Coordinator) process(ctx context.Context, num int, tracker *statusTracker) {
	if !tracker.start(num) {
		return
	}

	if !c.cfg.Force && c.cfg.Library.OutputExists(num) {
		// Output from an earlier run that never made it into the ledger.
		if err := c.cfg.Ledger.MarkComplete(num); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record chapter %d: %v\n", num, err)
		}
		tracker.complete(num)
		return
	}

	source, err := c.cfg.Library.ReadSource(num)
	if err != nil {
		c.fail(tracker, num, err)
		return
	}

	glossaryText := glossary.FormatPrompt(c.cfg.Glossary.Snapshot())
	translation, err := c.callProvider(ctx, c.cfg.Prompts.Translation(source, glossaryText), false)
	if err != nil {
		c.fail(tracker, num, fmt.Errorf("chapter %d: %w", num, err))
		return
	}

	outPath, err := c.cfg.Library.WriteOutput(num, translation)
	if err != nil {
		c.fail(tracker, num, err)
		return
	}

	c.updateGlossary(ctx, num, source, translation)

	if err := c.cfg.Ledger.MarkComplete(num); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record chapter %d: %v\n", num, err)
	}
	if c.cfg.Archive != nil {
		rec := archive.Record{
			Novel:      c.cfg.Novel,
			Chapter:    num,
			SourceLen:  len(source),
			OutputLen:  len(translation),
			OutputPath: outPath,
		}
		if err := c.cfg.Archive.RecordChapter(rec); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to archive chapter %d: %v\n", num, err)
		}
	}
	tracker.complete(num)
	done, total := tracker.progress()
	fmt.Printf("Chapter %d done (%d/%d)\n", num, done, total)
}

func (c *Coordinator) fail(tracker *statusTracker, num int, err error) {
	tracker.fail(num, err)
	done, total := tracker.progress()
	fmt.Fprintf(os.Stderr, "Chapter %d failed (%d/%d): %v\n", num, done, total, err)
}

func (c *Coordinator) updateGlossary(ctx context.Context, num int, source, translation string) {
	glossaryText := glossary.FormatPrompt(c.cfg.Glossary.Snapshot())
	reply, err := c.callProvider(ctx, c.cfg.Prompts.TermUpdate(source, translation, glossaryText), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: term extraction for chapter %d failed: %v\n", num, err)
		return
	}

	update := glossary.ParseUpdateResponse(reply)
	if update.Count() == 0 {
		return
	}
	c.cfg.Glossary.Merge(update)
	if err := c.cfg.Glossary.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save glossary after chapter %d: %v\n", num, err)
	}
}

// callProvider picks credentials from the rotator until one succeeds. A
// credential whose breaker is open is skipped until it half-opens again.
// Permanent errors abort immediately since no credential will fix them.
func (c *Coordinator) callProvider(ctx context.Context, text string, terms bool) (string, error) {
	var lastErr error
	for tries := 0; tries < len(c.cfg.Providers); tries++ {
		cred := c.cfg.Rotator.Next()
		out, err := c.breakers[cred.Index].Execute(func() (interface{}, error) {
			p := c.cfg.Providers[cred.Index]
			if terms {
				return p.ExtractTerms(ctx, text)
			}
			return p.Translate(ctx, text)
		})
		if err == nil {
			return out.(string), nil
		}
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			continue
		}
		c.cfg.Rotator.ReportError(cred)
		if errors.Is(err, provider.ErrPermanent) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", fmt.Errorf("all credentials failed: %w", lastErr)
}
