// Package selector picks option contracts out of a chain by target delta.
package selector

import (
	"math"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/models"
)

// SelectPut returns the put contract whose delta is closest to the target.
// targetDeltaPct is on the 0-100 scale and is normalized against the
// contracts' 0-1 deltas. Ties break to the earlier contract in chain order.
func SelectPut(chain *models.OptionChain, targetDeltaPct float64) (*models.OptionContract, error) {
	if chain == nil || len(chain.Contracts) == 0 {
		return nil, apperrors.ErrNoMatchingOption
	}

	target := targetDeltaPct / 100

	var best *models.OptionContract
	bestDiff := math.Inf(1)
	for i := range chain.Contracts {
		c := &chain.Contracts[i]
		if c.Right != models.RightPut {
			continue
		}
		diff := math.Abs(c.Delta - target)
		if diff < bestDiff {
			best = c
			bestDiff = diff
		}
	}
	if best == nil {
		return nil, apperrors.ErrNoMatchingOption
	}

	selected := *best
	return &selected, nil
}
