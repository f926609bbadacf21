package session

import (
	"context"
	"sync"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/analysis"
	"github.com/KaramelBytes/medintel-cli/internal/dataset"
	"github.com/KaramelBytes/medintel-cli/internal/filter"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const flightKey = "analysis"

// Runner runs at most one analysis at a time in the background. Starting
// while a run is outstanding joins it.
type Runner struct {
	group  singleflight.Group
	logger *zap.Logger

	mu  sync.Mutex
	cur *Pending
}

// NewRunner returns a Runner; a nil logger discards output.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Pending is a handle on one background analysis.
type Pending struct {
	Source   analysis.Source
	Criteria filter.Criteria
	Started  time.Time

	cancel context.CancelFunc
	done   chan struct{}
	res    *analysis.Result
	err    error
}

// Done is closed once the analysis finished or failed.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Cancel aborts the run; Wait then reports context.Canceled.
func (p *Pending) Cancel() { p.cancel() }

// Wait blocks until the run completes or ctx ends.
func (p *Pending) Wait(ctx context.Context) (*analysis.Result, error) {
	select {
	case <-p.done:
		return p.res, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Finished reports whether Wait would return immediately.
func (p *Pending) Finished() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Current returns the outstanding run, if any.
func (r *Runner) Current() *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return nil
	}
	if r.cur.Finished() {
		return nil
	}
	return r.cur
}

// Start launches a over d. c is recorded so the caller can tell which
// criteria the result belongs to.
func (r *Runner) Start(ctx context.Context, a analysis.Analyzer, d dataset.Dataset, c filter.Criteria) *Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil && !r.cur.Finished() {
		r.logger.Debug("joining outstanding analysis", zap.String("source", string(r.cur.Source)))
		return r.cur
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &Pending{
		Source:   a.Source(),
		Criteria: c,
		Started:  time.Now(),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	ch := r.group.DoChan(flightKey, func() (any, error) {
		return a.Analyze(ctx, d)
	})
	go func() {
		defer cancel()
		out := <-ch
		p.res, _ = out.Val.(*analysis.Result)
		p.err = out.Err
		if p.err != nil {
			p.res = nil
			r.logger.Warn("analysis failed", zap.String("source", string(p.Source)), zap.Duration("elapsed", time.Since(p.Started)), zap.Error(p.err))
		} else {
			r.logger.Info("analysis finished", zap.String("source", string(p.Source)), zap.Duration("elapsed", time.Since(p.Started)))
		}
		close(p.done)
	}()
	r.cur = p
	r.logger.Debug("analysis started", zap.String("source", string(p.Source)), zap.Int("records", d.Len()))
	return p
}
