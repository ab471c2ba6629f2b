// Package refresh decides, per dataset, whether to fetch from the data provider
// or trust the local cache, and folds the results into a Summary.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RemoteSource fetches a full dataset for a company from start onwards.
type RemoteSource interface {
	Fetch(ctx context.Context, kind domain.DatasetKind, companyID string, start time.Time) (*domain.Table, error)
}

// CacheStore is the subset of the local cache the policy needs.
type CacheStore interface {
	EnsureCompanyDir(companyID string) error
	Exists(companyID string, kind domain.DatasetKind) (bool, error)
	Write(companyID string, kind domain.DatasetKind, table *domain.Table) error
}

// Policy refreshes the cache for a company.
type Policy struct {
	remote RemoteSource
	cache  CacheStore
	kinds  []domain.DatasetKind
	now    func() time.Time
	group  singleflight.Group
	log    zerolog.Logger

	timeout      time.Duration // whole refresh, zero is unbounded
	fetchTimeout time.Duration // one shared fetch, zero is unbounded
}

// Option configures a Policy.
type Option func(*Policy)

// WithClock overrides the clock used for lookback start dates.
func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// WithKinds restricts the kinds refreshed, in the given order.
func WithKinds(kinds ...domain.DatasetKind) Option {
	return func(p *Policy) {
		p.kinds = kinds
	}
}

// WithTimeout bounds a whole refresh. Kinds not fetched by then are recorded as
// failed, so the summary is always returned within the timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Policy) {
		p.timeout = d
	}
}

// WithFetchTimeout bounds one provider fetch. A shared fetch outlives the caller
// that started it, so it needs its own limit.
func WithFetchTimeout(d time.Duration) Option {
	return func(p *Policy) {
		p.fetchTimeout = d
	}
}

// NewPolicy creates a refresh policy over every dataset kind.
func NewPolicy(remote RemoteSource, cache CacheStore, log zerolog.Logger, opts ...Option) *Policy {
	p := &Policy{
		remote: remote,
		cache:  cache,
		kinds:  domain.AllKinds(),
		now:    time.Now,
		log:    log.With().Str("service", "refresh").Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh ensures the cache for companyID is populated. With forceOnline every kind is
// fetched; otherwise only kinds whose cache file is missing. Fetch failures are recorded
// per kind and never abort the remaining kinds or escape this call.
func (p *Policy) Refresh(ctx context.Context, companyID string, forceOnline bool) *Summary {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	summary := &Summary{
		ID:          uuid.New(),
		CompanyID:   companyID,
		ForceOnline: forceOnline,
	}

	if err := p.cache.EnsureCompanyDir(companyID); err != nil {
		// Without a directory nothing can be cached; every kind fails the same way.
		for _, kind := range p.kinds {
			summary.record(failed(kind, err))
		}
		p.log.Error().Err(err).Str("company_id", companyID).Msg("Failed to prepare cache directory")
		return summary
	}

	for _, kind := range p.kinds {
		summary.record(p.refreshKind(ctx, companyID, kind, forceOnline))
	}

	event := p.log.Info()
	if summary.AnyFetchFailed {
		event = p.log.Warn()
	}
	event.
		Str("company_id", companyID).
		Bool("force_online", forceOnline).
		Bool("fetch_attempted", summary.AnyFetchAttempted).
		Bool("fetch_failed", summary.AnyFetchFailed).
		Str("refresh_id", summary.ID.String()).
		Msg("Cache refresh finished")

	return summary
}

func (p *Policy) refreshKind(ctx context.Context, companyID string, kind domain.DatasetKind, forceOnline bool) Outcome {
	if !forceOnline {
		exists, err := p.cache.Exists(companyID, kind)
		if err != nil {
			p.log.Warn().Err(err).Str("company_id", companyID).Str("kind", kind.String()).Msg("Cache check failed, fetching")
		} else if exists {
			return Outcome{Kind: kind, Status: StatusCacheHit}
		}
	}

	if err := ctx.Err(); err != nil {
		return p.fail(companyID, kind, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err), false)
	}

	// Concurrent refreshes of the same pair share one fetch and one file write. The
	// fetch is detached from the caller that starts it; every caller waits on its own
	// context.
	key := companyID + "/" + kind.String()
	ch := p.group.DoChan(key, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		if p.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, p.fetchTimeout)
			defer cancel()
		}
		return p.fetchAndStore(fetchCtx, companyID, kind)
	})

	select {
	case <-ctx.Done():
		return p.fail(companyID, kind, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, ctx.Err()), false)
	case res := <-ch:
		if res.Err != nil {
			return p.fail(companyID, kind, res.Err, res.Shared)
		}
		return Outcome{Kind: kind, Status: StatusFetched, Rows: res.Val.(int)}
	}
}

func (p *Policy) fail(companyID string, kind domain.DatasetKind, err error, shared bool) Outcome {
	p.log.Warn().Err(err).
		Str("company_id", companyID).
		Str("kind", kind.String()).
		Bool("shared", shared).
		Msg("Dataset refresh failed")
	return failed(kind, err)
}

func (p *Policy) fetchAndStore(ctx context.Context, companyID string, kind domain.DatasetKind) (int, error) {
	start := kind.Spec().Start.From(p.now())
	table, err := p.remote.Fetch(ctx, kind, companyID, start)
	if err != nil {
		return 0, err
	}
	if err := p.cache.Write(companyID, kind, table); err != nil {
		return 0, fmt.Errorf("failed to cache %s: %w", kind, err)
	}
	return table.Len(), nil
}

func failed(kind domain.DatasetKind, err error) Outcome {
	return Outcome{
		Kind:    kind,
		Status:  StatusFailed,
		Message: "Read " + kind.Spec().Dataset + " Failed",
		Err:     err,
	}
}
