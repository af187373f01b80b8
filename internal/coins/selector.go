// Package coins implements C3: picks inputs covering amount+fee and
// reserves them.
package coins

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dwoura/privchain-wallet/internal/model"
)

// ErrNoInputs is raised when available coins can't cover the target.
var ErrNoInputs = errors.New("no inputs")

// Selection is the result of Select: the chosen coins plus the change
// amount (zero if the chosen coins sum exactly to target).
type Selection struct {
	Coins  []model.Coin
	Change decimal.Decimal
}

// Select picks the smallest set of available coins whose total is >=
// target (see smallestCovering for which set wins when several have that
// size). It does not mutate anything; call Reserve to mark the chosen coins
// Outgoing.
func Select(ctx context.Context, db *gorm.DB, assetID uint64, target decimal.Decimal, exclude []string) (Selection, error) {
	var candidates []model.Coin
	q := db.WithContext(ctx).
		Where("asset_id = ? AND status = ?", assetID, "Available").
		Order("created_at ASC")
	if len(exclude) > 0 {
		q = q.Where("commit_id NOT IN ?", exclude)
	}
	if err := q.Find(&candidates).Error; err != nil {
		return Selection{}, err
	}

	sel, ok := smallestCovering(candidates, target)
	if !ok {
		return Selection{}, ErrNoInputs
	}

	sum := decimal.Zero
	for _, c := range sel {
		sum = sum.Add(c.Amount)
	}
	return Selection{Coins: sel, Change: sum.Sub(target)}, nil
}

// smallestCovering finds a minimum-size subset of candidates whose sum is
// >= target. It takes coins largest-amount first until the target is
// reached; the k largest coins have the largest sum of any k coins, so this
// uses the fewest coins. Age only orders coins of equal amount (older
// first): when several different sets of the minimum size cover the target,
// the one made of the largest coins is chosen, not the one made of the
// oldest. The chosen coins are returned oldest-first.
func smallestCovering(candidates []model.Coin, target decimal.Decimal) ([]model.Coin, bool) {
	sorted := make([]model.Coin, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	// Largest amount first; the stable sort keeps the oldest-first order
	// above among coins of equal amount.
	bySize := make([]model.Coin, len(sorted))
	copy(bySize, sorted)
	sort.SliceStable(bySize, func(i, j int) bool {
		return bySize[i].Amount.GreaterThan(bySize[j].Amount)
	})

	sum := decimal.Zero
	var chosen []model.Coin
	for _, c := range bySize {
		chosen = append(chosen, c)
		sum = sum.Add(c.Amount)
		if sum.GreaterThanOrEqual(target) {
			sort.SliceStable(chosen, func(i, j int) bool {
				return chosen[i].CreatedAt.Before(chosen[j].CreatedAt)
			})
			return chosen, true
		}
	}
	return nil, false
}

// Reserve marks the selected coins Outgoing for txID inside one database
// transaction. It runs separately from Select and from the caller's write
// of Inputs; a coin that is no longer Available is skipped without error,
// so a second call for the same txID is a no-op.
func Reserve(ctx context.Context, db *gorm.DB, txID string, sel Selection) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range sel.Coins {
			res := tx.Model(&model.Coin{}).
				Where("commit_id = ? AND status = ?", c.CommitID, "Available").
				Updates(map[string]interface{}{"status": "Outgoing", "spent_in_tx": txID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Already reserved (possibly by this same re-entrant call) or
				// spent out from under us; the caller re-derives from the
				// parameter store rather than trusting this return value twice.
				continue
			}
		}
		return nil
	})
}

// Release returns coins spent-in txID back to Available. The negotiation
// driver does not call it: a failed negotiation leaves its coins Outgoing.
func Release(ctx context.Context, db *gorm.DB, txID string) error {
	return db.WithContext(ctx).Model(&model.Coin{}).
		Where("spent_in_tx = ? AND status = ?", txID, "Outgoing").
		Updates(map[string]interface{}{"status": "Available", "spent_in_tx": ""}).Error
}
