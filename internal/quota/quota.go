// Package quota enforces per-owner storage limits.
//
// The check reads current usage and compares it against the limit; nothing
// holds the decision until the write lands. With the default Locker two
// concurrent uploads by one owner can overshoot the limit by one upload.
// File or Redis lockers serialize an owner's writes when that matters.
package quota

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"mediadocs/internal/apperror"
)

// Store reads the figures a quota decision needs.
type Store interface {
	// SumSizeByOwner returns the total bytes of the owner's documents.
	SumSizeByOwner(ctx context.Context, ownerID string) (int64, error)
	// LimitForOwner returns an owner-specific limit, or ok=false to use the default.
	LimitForOwner(ctx context.Context, ownerID string) (limit int64, ok bool, err error)
}

// Usage is an owner's storage consumption.
type Usage struct {
	Used       int64   `json:"used_bytes"`
	Limit      int64   `json:"limit_bytes"`
	Available  int64   `json:"available_bytes"`
	Percent    float64 `json:"percent_used"`
	UsedHuman  string  `json:"used"`
	LimitHuman string  `json:"limit"`
}

// Accountant answers quota questions for owners.
type Accountant struct {
	store        Store
	defaultLimit int64
	locker       Locker
}

// NewAccountant returns an Accountant. A nil locker disables serialization.
func NewAccountant(store Store, defaultLimit int64, locker Locker) *Accountant {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &Accountant{store: store, defaultLimit: defaultLimit, locker: locker}
}

func (a *Accountant) limit(ctx context.Context, ownerID string) (int64, error) {
	l, ok, err := a.store.LimitForOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("load quota limit: %w", err)
	}
	if !ok {
		return a.defaultLimit, nil
	}
	return l, nil
}

// AssertWithinQuota fails with STORAGE_LIMIT_EXCEEDED when storing
// candidateBytes more would push the owner past the limit.
func (a *Accountant) AssertWithinQuota(ctx context.Context, ownerID string, candidateBytes int64) error {
	limit, err := a.limit(ctx, ownerID)
	if err != nil {
		return err
	}
	used, err := a.store.SumSizeByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("sum owner usage: %w", err)
	}
	if used+candidateBytes > limit {
		return apperror.StorageLimitExceeded(limit)
	}
	return nil
}

// Usage reports the owner's consumption against the limit.
func (a *Accountant) Usage(ctx context.Context, ownerID string) (*Usage, error) {
	limit, err := a.limit(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	used, err := a.store.SumSizeByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sum owner usage: %w", err)
	}

	u := &Usage{
		Used:       used,
		Limit:      limit,
		Available:  max(limit-used, 0),
		UsedHuman:  humanize.IBytes(uint64(max(used, 0))),
		LimitHuman: humanize.IBytes(uint64(max(limit, 0))),
	}
	if limit > 0 {
		u.Percent = math.Round(float64(used)/float64(limit)*10000) / 100
	}
	return u, nil
}

// Lock serializes quota-checked writes for ownerID until unlock is called.
func (a *Accountant) Lock(ctx context.Context, ownerID string) (func() error, error) {
	return a.locker.Lock(ctx, ownerID)
}
