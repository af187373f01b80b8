package coins

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwoura/privchain-wallet/internal/model"
)

func coin(amount int64, age time.Duration) model.Coin {
	return model.Coin{
		Amount:    decimal.NewFromInt(amount),
		CreatedAt: time.Now().Add(-age),
	}
}

func TestSmallestCoveringPicksFewestCoins(t *testing.T) {
	candidates := []model.Coin{
		coin(10, 3*time.Hour),
		coin(50, 2*time.Hour),
		coin(60, time.Hour),
	}

	chosen, ok := smallestCovering(candidates, decimal.NewFromInt(55))
	if !ok {
		t.Fatalf("expected a covering selection")
	}
	if len(chosen) != 1 {
		t.Fatalf("got %d coins, want 1 (the single 60 coin covers 55 alone)", len(chosen))
	}
	if !chosen[0].Amount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("got coin amount %s, want 60", chosen[0].Amount)
	}
}

func TestSmallestCoveringCombinesWhenNoSingleCoinSuffices(t *testing.T) {
	candidates := []model.Coin{
		coin(10, 3*time.Hour),
		coin(20, 2*time.Hour),
		coin(25, time.Hour),
	}

	chosen, ok := smallestCovering(candidates, decimal.NewFromInt(40))
	if !ok {
		t.Fatalf("expected a covering selection")
	}

	sum := decimal.Zero
	for _, c := range chosen {
		sum = sum.Add(c.Amount)
	}
	if sum.LessThan(decimal.NewFromInt(40)) {
		t.Errorf("chosen coins sum to %s, want >= 40", sum)
	}
}

func TestSmallestCoveringFailsWhenInsufficient(t *testing.T) {
	candidates := []model.Coin{coin(5, time.Hour), coin(3, 2*time.Hour)}
	if _, ok := smallestCovering(candidates, decimal.NewFromInt(100)); ok {
		t.Errorf("expected no covering selection for an unreachable target")
	}
}

func TestSmallestCoveringOrdersResultOldestFirst(t *testing.T) {
	candidates := []model.Coin{
		coin(30, time.Hour),
		coin(30, 2*time.Hour),
	}

	chosen, ok := smallestCovering(candidates, decimal.NewFromInt(50))
	if !ok {
		t.Fatalf("expected a covering selection")
	}
	if len(chosen) < 2 {
		t.Fatalf("expected both coins to be needed")
	}
	if chosen[0].CreatedAt.After(chosen[1].CreatedAt) {
		t.Errorf("expected the older coin first in the result")
	}
}
