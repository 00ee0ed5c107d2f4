// Copyright © 2026, the pdfread authors.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfread

import (
	"context"
	"fmt"
	"sync"

	"github.com/cwnourse/pdfread/logger"
	"golang.org/x/sync/semaphore"
)

// Processor defines the contract for taking a census of a PDF file's
// object graph.
type Processor interface {
	Census(ctx context.Context, path string) (*Census, error)
}

// A Census summarizes every object reachable through a document's xref
// chain.
type Census struct {
	Path       string         `json:"path"`
	PDFVersion string         `json:"pdfVersion,omitempty"`
	Objects    int            `json:"objects"`
	ByKind     map[string]int `json:"byKind"`
	Free       int            `json:"free"`
	Compressed int            `json:"compressed"`
	StreamData int64          `json:"streamData"`
	Sections   int            `json:"sections"`
	Pages      int            `json:"pages"`
	Encrypted  bool           `json:"encrypted"`
	Skipped    int            `json:"skipped"`
}

// CensusStrategy defines how to handle an object that fails to
// materialize. Different strategies handle errors differently (strict
// vs. best-effort).
type CensusStrategy interface {
	OnObjectError(num uint32, gen uint16, err error) error
}

// StrictCensus enforces strict parsing.
// If any object fails, the entire census fails.
type StrictCensus struct{}

func (StrictCensus) OnObjectError(num uint32, gen uint16, err error) error {
	return fmt.Errorf("strict mode failed on object %d %d: %w", num, gen, err)
}

// BestEffortCensus tolerates errors.
// If an object fails, it is simply skipped.
type BestEffortCensus struct{}

func (BestEffortCensus) OnObjectError(num uint32, gen uint16, err error) error {
	logger.Debug(fmt.Sprintf("BestEffortCensus: skipping object %d %d: %v", num, gen, err))
	return nil
}

// processor manages PDF inspection with concurrency control and
// delegates failure handling to the chosen CensusStrategy. Each
// document stays confined to the goroutine inspecting it; the
// semaphore only caps how many are open at once.
type processor struct {
	cfg      *Config
	sem      *semaphore.Weighted
	strategy CensusStrategy
}

// NewProcessor validates the config and creates a new processor,
// selecting the correct CensusStrategy (Strict or BestEffort).
func NewProcessor(cfg *Config) *processor {
	var strategy CensusStrategy
	switch cfg.ParsingMode {
	case Strict:
		strategy = StrictCensus{}
	case BestEffort:
		strategy = BestEffortCensus{}
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug(fmt.Sprintf("Processor initialized: parsing_mode=%v, max_concurrent_docs=%d",
		cfg.ParsingMode, cfg.MaxConcurrentDocs), true)

	return &processor{
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentDocs)),
		strategy: strategy,
	}
}

// Census opens path and materializes every object named by its xref
// chain, tallying the result.
func (p *processor) Census(ctx context.Context, path string) (*Census, error) {
	logger.Debug(fmt.Sprintf("Starting census: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer p.sem.Release(1)

	d, err := Open(path)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to open PDF: path=%s err=%v", path, err), true)
		return nil, err
	}
	defer d.Close()

	c, err := p.censusOf(ctx, d)
	if err != nil {
		return nil, err
	}
	c.Path = path
	logger.Debug(fmt.Sprintf("Census completed: path=%s objects=%d skipped=%d", path, c.Objects, c.Skipped), true)
	return c, nil
}

func (p *processor) censusOf(ctx context.Context, d *Document) (*Census, error) {
	c := &Census{
		PDFVersion: d.Version(),
		ByKind:     make(map[string]int),
		Sections:   len(d.Sections()),
		Pages:      d.NumPage(),
		Encrypted:  !d.Trailer().Key("Encrypt").IsNull(),
	}
	seen := make(map[objptr]bool)
	for _, sec := range d.Sections() {
		for _, ptr := range sec.order {
			if seen[ptr] {
				continue
			}
			seen[ptr] = true
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ent := sec.entries[ptr]
			if ent.kind == xrefFree {
				c.Free++
				continue
			}
			if ent.kind == xrefInStream {
				c.Compressed++
			}
			v, err := p.getObjectWithRetries(ctx, d, ptr)
			if err != nil {
				if serr := p.strategy.OnObjectError(ptr.id, ptr.gen, err); serr != nil {
					return nil, serr
				}
				c.Skipped++
				continue
			}
			c.Objects++
			c.ByKind[v.Kind().String()]++
			if v.Kind() == Stream {
				c.StreamData += int64(len(v.Body()))
			}
		}
	}
	return c, nil
}

func (p *processor) getObjectWithRetries(ctx context.Context, d *Document, ptr objptr) (Value, error) {
	var v Value
	var err error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return Value{}, cerr
		}
		v, err = d.GetObject(ptr.id, ptr.gen)
		if err == nil {
			break
		}
		logger.Debug(fmt.Sprintf("Retrying object load: obj=%d %d attempt=%d err=%v", ptr.id, ptr.gen, attempt, err))
	}
	return v, err
}

type censusResult struct {
	path   string
	census *Census
	err    error
}

// CensusAll runs Census over every path with a bounded worker pool and
// returns the per-path results. In strict mode any failure makes
// CensusAll return the first error received and no results; the
// remaining files are still inspected before it returns. In best-effort
// mode failed files are reported with a nil Census.
func (p *processor) CensusAll(ctx context.Context, paths []string) (map[string]*Census, error) {
	logger.Debug(fmt.Sprintf("Starting batch census: files=%d", len(paths)), true)
	if len(paths) == 0 {
		return map[string]*Census{}, nil
	}

	numWorkers := p.cfg.MaxConcurrentDocs
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	jobs := make(chan string, len(paths))
	results := make(chan censusResult, len(paths))

	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for path := range jobs {
				ctxDoc, cancel := context.WithTimeout(ctx, p.cfg.WorkerTimeout)
				c, err := p.Census(ctxDoc, path)
				cancel()
				results <- censusResult{path: path, census: c, err: err}
			}
		}(w)
	}
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]*Census, len(paths))
	var firstErr error
	for res := range results {
		if res.err != nil {
			logger.Debug(fmt.Sprintf("Census failed: path=%s err=%v", res.path, res.err), true)
			if p.cfg.ParsingMode == Strict && firstErr == nil {
				firstErr = fmt.Errorf("census of %s: %w", res.path, res.err)
			}
		}
		out[res.path] = res.census
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (p *processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	logger.Debug("Slot acquired successfully", true)
	return nil
}
