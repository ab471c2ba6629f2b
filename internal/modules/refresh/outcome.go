package refresh

import (
	"strings"

	"github.com/aristath/finlookup/internal/domain"
	"github.com/google/uuid"
)

// Status is the tri-state result of refreshing one dataset.
type Status string

const (
	StatusCacheHit Status = "cache_hit"
	StatusFetched  Status = "fetched"
	StatusFailed   Status = "failed"
)

// Outcome records what happened to one dataset kind during a refresh.
type Outcome struct {
	Kind    domain.DatasetKind `json:"kind"`
	Status  Status             `json:"status"`
	Rows    int                `json:"rows"`
	Message string             `json:"message,omitempty"`
	Err     error              `json:"-"`
}

// Summary aggregates the per-kind outcomes of one refresh.
type Summary struct {
	ID                uuid.UUID `json:"id"`
	CompanyID         string    `json:"company_id"`
	ForceOnline       bool      `json:"force_online"`
	Outcomes          []Outcome `json:"outcomes"`
	AnyFetchAttempted bool      `json:"any_fetch_attempted"`
	AnyFetchFailed    bool      `json:"any_fetch_failed"`
}

// Alerts are the three user-facing alert states. They are independent flags:
// an automatic fetch can also fail, for example.
type Alerts struct {
	// AutoFetched: local data was missing and was fetched without online mode.
	AutoFetched bool `json:"auto_fetched"`
	// OnlineSucceeded: online mode was requested and every fetch succeeded.
	OnlineSucceeded bool `json:"online_succeeded"`
	// FetchFailed: at least one fetch failed; Message lists them.
	FetchFailed bool   `json:"fetch_failed"`
	Message     string `json:"message,omitempty"`
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	if o.Status != StatusCacheHit {
		s.AnyFetchAttempted = true
	}
	if o.Status == StatusFailed {
		s.AnyFetchFailed = true
	}
}

// Succeeded is the aggregate online success: online mode was requested and no fetch failed.
// A forced refresh whose fetches failed never counts as success.
func (s *Summary) Succeeded() bool {
	return s.ForceOnline && !s.AnyFetchFailed
}

// Messages returns the failure messages in refresh order.
func (s *Summary) Messages() []string {
	var msgs []string
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			msgs = append(msgs, o.Message)
		}
	}
	return msgs
}

// Alerts derives the alert states from the outcomes.
func (s *Summary) Alerts() Alerts {
	return Alerts{
		AutoFetched:     s.AnyFetchAttempted && !s.ForceOnline,
		OnlineSucceeded: s.Succeeded(),
		FetchFailed:     s.AnyFetchFailed,
		Message:         strings.Join(s.Messages(), "\n"),
	}
}

// Outcome returns the outcome for kind, if it was refreshed.
func (s *Summary) Outcome(kind domain.DatasetKind) (Outcome, bool) {
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			return o, true
		}
	}
	return Outcome{}, false
}
