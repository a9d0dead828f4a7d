package store

import (
	"context"
	"log/slog"

	"github.com/MeKo-Tech/platescan/internal/nutrition"
)

// Fetcher resolves a barcode remotely. *RemoteClient is the production
// implementation.
type Fetcher interface {
	Fetch(ctx context.Context, code string) (*nutrition.Estimate, error)
}

// CachedLookup answers barcode lookups from the local store first and falls
// back to the remote fetcher, caching remote hits. It implements the
// pipeline's Lookup contract.
type CachedLookup struct {
	store   *Store
	fetcher Fetcher
}

// NewCachedLookup builds a lookup over an open store and an optional
// fetcher (cache-only when nil).
func NewCachedLookup(store *Store, fetcher Fetcher) *CachedLookup {
	return &CachedLookup{store: store, fetcher: fetcher}
}

// LookupCode resolves a code to nutrition facts, nil on a miss. Cache read
// failures degrade to the remote path; remote failures are returned so the
// caller can distinguish "unknown product" from "lookup broken".
func (l *CachedLookup) LookupCode(ctx context.Context, code string) (*nutrition.Estimate, error) {
	if l.store != nil {
		est, err := l.store.Get(ctx, code)
		if err != nil {
			slog.Debug("Cache read failed", "code", code, "error", err)
		} else if est != nil {
			return est, nil
		}
	}
	if l.fetcher == nil {
		return nil, nil
	}

	est, err := l.fetcher.Fetch(ctx, code)
	if err != nil || est == nil {
		return nil, err
	}
	if l.store != nil {
		if err := l.store.Put(ctx, code, est); err != nil {
			slog.Debug("Cache write failed", "code", code, "error", err)
		}
	}
	return est, nil
}
