package domain

import "errors"

// Sentinel errors shared across packages. Wrap with context at call sites:
// fmt.Errorf("store: get dashboard: %w", ErrNotFound).
var (
	// ErrNotFound indicates a cache or store lookup matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrNoSnapshot indicates no orderbook snapshot is available yet for the
	// requested pair.
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrSourceUnavailable indicates the orderbook source failed to produce a
	// snapshot (RPC failure, decode failure).
	ErrSourceUnavailable = errors.New("orderbook source unavailable")

	// ErrInvalidThresholds indicates a threshold update failed validation.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrEmptyBook indicates a snapshot contains no levels on either side.
	ErrEmptyBook = errors.New("orderbook is empty")
)
