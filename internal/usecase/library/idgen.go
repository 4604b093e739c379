package library

import (
	"context"
	"fmt"
	"math/rand/v2"

	apperrors "library-catalog/pkg/errors"
)

// IDAllocator hands out user IDs from the half-open range [Min, Max).
//
// It draws up to MaxAttempts random candidates; once they all collide it falls back to the
// lowest free ID, and reports ErrIDSpaceExhausted when the range is full.
type IDAllocator struct {
	Min         int64
	Max         int64
	MaxAttempts int
	rnd         *rand.Rand
}

// NewIDAllocator creates an allocator. A nil rnd gets a randomly seeded source.
func NewIDAllocator(minID, maxID int64, maxAttempts int, rnd *rand.Rand) *IDAllocator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &IDAllocator{Min: minID, Max: maxID, MaxAttempts: maxAttempts, rnd: rnd}
}

// Next returns an ID for which taken reports false.
func (a *IDAllocator) Next(ctx context.Context, taken func(ctx context.Context, id int64) (bool, error)) (int64, error) {
	if a.Max <= a.Min {
		return 0, apperrors.ErrIDSpaceExhausted
	}
	span := a.Max - a.Min

	for range a.MaxAttempts {
		id := a.Min + a.rnd.Int64N(span)
		used, err := taken(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("check user id %d: %w", id, err)
		}
		if !used {
			return id, nil
		}
	}

	for id := a.Min; id < a.Max; id++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		used, err := taken(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("check user id %d: %w", id, err)
		}
		if !used {
			return id, nil
		}
	}

	return 0, apperrors.ErrIDSpaceExhausted
}
