package entities

import (
	"time"
)

// Draw represents a scheduled raffle draw
type Draw struct {
	ID          int64      `db:"id"`
	ScheduledAt time.Time  `db:"scheduled_at"` // When the draw takes place; sales close at this time
	Finalized   bool       `db:"finalized"`
	FirstPrize  *string    `db:"first_prize"`  // NULL until finalized
	SecondPrize *string    `db:"second_prize"` // NULL until finalized
	ThirdPrize  *string    `db:"third_prize"`  // NULL until finalized
	RuleSet     *string    `db:"rule_set"`     // Rule set id used for the last settlement
	FinalizedAt *time.Time `db:"finalized_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// IsFinalized returns true once winning numbers have been entered
func (d *Draw) IsFinalized() bool {
	return d.Finalized
}

// AcceptsSales returns true if ticket line items may still be added or changed
func (d *Draw) AcceptsSales(now time.Time) bool {
	return !d.IsFinalized() && now.Before(d.ScheduledAt)
}

// WinningNumbers returns the stored prizes; ok is false before finalization
func (d *Draw) WinningNumbers() (WinningNumbers, bool) {
	if !d.Finalized || d.FirstPrize == nil || d.SecondPrize == nil || d.ThirdPrize == nil {
		return WinningNumbers{}, false
	}
	return WinningNumbers{
		First:  *d.FirstPrize,
		Second: *d.SecondPrize,
		Third:  *d.ThirdPrize,
	}, true
}

// Finalize stores the winning numbers together with the finalized flag
func (d *Draw) Finalize(numbers WinningNumbers, ruleSet string, at time.Time) {
	first, second, third := numbers.First, numbers.Second, numbers.Third
	d.FirstPrize = &first
	d.SecondPrize = &second
	d.ThirdPrize = &third
	d.RuleSet = &ruleSet
	d.FinalizedAt = &at
	d.Finalized = true
}
