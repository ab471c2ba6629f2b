package domain

import "errors"

// Error taxonomy shared by the refresh policy, the metrics engine and the HTTP layer.
// Callers compare with errors.Is; producers wrap with fmt.Errorf("...: %w", Err...).
var (
	// ErrRemoteUnavailable means the data provider could not be reached or kept failing.
	ErrRemoteUnavailable = errors.New("remote data source unavailable")

	// ErrMalformedDataset means a payload or cache file does not match the dataset schema.
	ErrMalformedDataset = errors.New("malformed dataset")

	// ErrCacheMiss means no local file exists for a (company, kind) pair.
	// It is not a failure on the refresh path, it is what triggers a fetch.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInsufficientHistory means a derived metric needs more rows than are available.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrEmptyWindow means the requested window excludes every row.
	ErrEmptyWindow = errors.New("empty window")

	// ErrUndefinedRatio means a ratio would divide by zero or lacks its counterpart.
	ErrUndefinedRatio = errors.New("undefined ratio")

	// ErrInvalidCompanyID means a company identifier is not usable as a cache key.
	ErrInvalidCompanyID = errors.New("invalid company id")
)
