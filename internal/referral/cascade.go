package referral

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is one qualifying financial event: a completed deposit or a profit
// distribution. SourceType+SourceID identify it for idempotency.
type Event struct {
	SourceType   string
	SourceID     uuid.UUID
	UserID       uuid.UUID
	Amount       decimal.Decimal
	FirstDeposit bool
}

// ReferrerLookup resolves the direct referrer of a user; nil means the user
// is a root of the referral tree.
type ReferrerLookup interface {
	ReferrerOf(userID uuid.UUID) (*uuid.UUID, error)
}

// Cascade walks the referral chain of an event's originating user and credits
// each ancestor per the configured rate schedule, at most len(rates) levels.
type Cascade struct {
	lookup          ReferrerLookup
	repo            Repository
	rates           []decimal.Decimal
	onRepeatDeposit bool
}

func NewCascade(lookup ReferrerLookup, repo Repository, rates []decimal.Decimal, onRepeatDeposit bool) *Cascade {
	return &Cascade{lookup: lookup, repo: repo, rates: rates, onRepeatDeposit: onRepeatDeposit}
}

// Apply processes one event end to end. Replays are no-ops; a failure leaves
// no partial credit (the repository commits the whole cascade or nothing).
func (c *Cascade) Apply(ev Event) error {
	if ev.SourceType != SourceDeposit && ev.SourceType != SourceProfit {
		return fmt.Errorf("unknown cascade source type %q", ev.SourceType)
	}
	if ev.SourceType == SourceDeposit && !ev.FirstDeposit && !c.onRepeatDeposit {
		return nil
	}
	if !ev.Amount.IsPositive() {
		return nil
	}

	processed, err := c.repo.RunExists(ev.SourceType, ev.SourceID)
	if err != nil {
		return err
	}
	if processed {
		return nil
	}

	credits, err := c.Plan(ev.UserID, ev.Amount)
	if err != nil {
		return err
	}

	return c.repo.ApplyCascade(ev, credits)
}

// Plan walks upward from the user's direct referrer and computes the credit
// for each level. The walk stops at the first root; a cycle in the chain
// (bad data) is cut off rather than looped.
func (c *Cascade) Plan(userID uuid.UUID, amount decimal.Decimal) ([]PlannedCredit, error) {
	credits := make([]PlannedCredit, 0, len(c.rates))
	seen := map[uuid.UUID]bool{userID: true}

	current := userID
	for level := 1; level <= len(c.rates); level++ {
		referrer, err := c.lookup.ReferrerOf(current)
		if err != nil {
			return nil, err
		}
		if referrer == nil || seen[*referrer] {
			break
		}
		seen[*referrer] = true

		rate := c.rates[level-1]
		commission := amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
		if commission.IsPositive() {
			credits = append(credits, PlannedCredit{
				Level:      level,
				AncestorID: *referrer,
				Amount:     commission,
				Rate:       rate,
			})
		}

		current = *referrer
	}

	return credits, nil
}
