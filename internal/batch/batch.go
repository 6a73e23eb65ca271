// Package batch resolves many post records against the place resolver with
// a bounded worker pool.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/services"
	"golang.org/x/sync/errgroup"
)

// Resolver is satisfied by *services.PlaceResolver
type Resolver interface {
	ResolveFromMetadata(ctx context.Context, title, description, originalURL string) (*services.ResolutionResult, error)
}

// Config for a batch run
type Config struct {
	MaxWorkers int           // 동시 resolve 수 (기본: 3)
	Delay      time.Duration // worker별 호출 간 딜레이 (기본: 200ms)
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxWorkers: 3,
		Delay:      200 * time.Millisecond,
	}
}

// Job is one post to resolve. Line is the 1-based input line.
type Job struct {
	Line        int    `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

// Result of one job; Error is empty on success
type Result struct {
	Line    int    `json:"line"`
	Title   string `json:"title"`
	PlaceID string `json:"placeId,omitempty"`
	CafeID  string `json:"cafeId,omitempty"`
	Cached  bool   `json:"cached"`
	Error   string `json:"error,omitempty"`
}

// Stats 배치 통계
type Stats struct {
	Total    int32
	Resolved int32
	NotFound int32
	Errors   int32
}

func (s *Stats) String() string {
	return fmt.Sprintf("Total:%d, Resolved:%d, NotFound:%d, Errors:%d",
		atomic.LoadInt32(&s.Total), atomic.LoadInt32(&s.Resolved),
		atomic.LoadInt32(&s.NotFound), atomic.LoadInt32(&s.Errors))
}

// ReadJobs parses JSON Lines. Blank lines are skipped; a malformed line stops the read.
func ReadJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(text), &job); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		job.Line = line
		jobs = append(jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Run resolves every job and returns results in input order.
// Per-job failures are recorded in the result; a cancelled ctx marks the
// remaining jobs with ctx.Err().
func Run(ctx context.Context, resolver Resolver, jobs []Job, cfg Config) ([]Result, *Stats) {
	log := logger.GetLogger("batch")
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultConfig().MaxWorkers
	}

	stats := &Stats{Total: int32(len(jobs))}
	results := make([]Result, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(cfg.MaxWorkers)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = Result{Line: job.Line, Title: job.Title, Error: err.Error()}
			atomic.AddInt32(&stats.Errors, 1)
			continue
		}
		g.Go(func() error {
			results[i] = resolveOne(ctx, resolver, job, stats)
			pause(ctx, cfg.Delay)
			return nil
		})
	}
	_ = g.Wait()

	log.Infof("[Batch 통계] %s", stats)
	return results, stats
}

func resolveOne(ctx context.Context, resolver Resolver, job Job, stats *Stats) Result {
	result := Result{Line: job.Line, Title: job.Title}

	resolved, err := resolver.ResolveFromMetadata(ctx, job.Title, job.Description, job.URL)
	switch {
	case errors.Is(err, services.ErrNoCandidateFound):
		atomic.AddInt32(&stats.NotFound, 1)
		result.Error = err.Error()
		return result
	case err != nil:
		atomic.AddInt32(&stats.Errors, 1)
		result.Error = err.Error()
		logger.GetLogger("batch").Warnw("resolve failed", "line", job.Line, "title", job.Title, "error", err)
		return result
	}

	atomic.AddInt32(&stats.Resolved, 1)
	result.PlaceID = resolved.PlaceID
	result.Cached = resolved.SkippedDetails
	if resolved.Cafe != nil {
		result.CafeID = resolved.Cafe.ID
	}
	return result
}

func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// WriteResults writes one JSON object per line
func WriteResults(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
