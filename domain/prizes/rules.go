package prizes

import (
	"errors"
	"fmt"

	"raffler/domain/entities"
)

// ErrInvalidRuleSet is returned when a rule set fails validation
var ErrInvalidRuleSet = errors.New("invalid rule set")

// MatchKind names how a ticket number is compared against a prize
type MatchKind string

const (
	MatchExact          MatchKind = "exact"
	MatchPair           MatchKind = "pair"
	MatchThreeDigits    MatchKind = "three_digits"
	MatchFirst2AndLast1 MatchKind = "first2_and_last1"
	MatchFirst2OrLast2  MatchKind = "first2_or_last2"
	MatchFirst2         MatchKind = "first2"
	MatchLast2          MatchKind = "last2"
	MatchLast1          MatchKind = "last1"
)

func (m MatchKind) isQuadKind() bool {
	switch m {
	case MatchExact, MatchThreeDigits, MatchFirst2AndLast1, MatchFirst2OrLast2,
		MatchFirst2, MatchLast2, MatchLast1:
		return true
	}
	return false
}

// Tier is one prize condition of a rule set
type Tier struct {
	Label      string
	Rank       int // 1, 2 or 3
	Match      MatchKind
	UnitAmount entities.Cents
	// Bonuses are extra tiers paid on top of this one when it matches (quad tiers only)
	Bonuses []Tier
}

// RuleSet is a named, versioned prize table.
//
// Pair tiers are non-exclusive: every matching tier pays. Quad tiers are
// evaluated in order and the first match wins, followed by any of its
// bonuses that also match.
type RuleSet struct {
	Name        string
	Version     int
	Description string
	// RequireFourDigitLowerPrizes rejects 2-digit second and third prizes
	RequireFourDigitLowerPrizes bool
	PairTiers                   []Tier
	QuadTiers                   []Tier
}

// ID returns the identifier stored with every settlement, e.g. "cascade-v1"
func (r *RuleSet) ID() string {
	return fmt.Sprintf("%s-v%d", r.Name, r.Version)
}

// ValidateNumbers applies the rule set's winning number format
func (r *RuleSet) ValidateNumbers(numbers entities.WinningNumbers) error {
	if r.RequireFourDigitLowerPrizes {
		return numbers.ValidateFourDigits()
	}
	return numbers.Validate()
}

// Validate checks the rule set for structural errors
func (r *RuleSet) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRuleSet)
	}
	if r.Version <= 0 {
		return fmt.Errorf("%w: version must be positive", ErrInvalidRuleSet)
	}
	if len(r.PairTiers) == 0 && len(r.QuadTiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidRuleSet)
	}

	labels := make(map[string]bool)
	for _, tier := range r.PairTiers {
		if tier.Match != MatchPair {
			return fmt.Errorf("%w: pair tier %q must use match %q", ErrInvalidRuleSet, tier.Label, MatchPair)
		}
		if len(tier.Bonuses) > 0 {
			return fmt.Errorf("%w: pair tier %q cannot carry bonuses", ErrInvalidRuleSet, tier.Label)
		}
		if err := validateTier(tier, labels); err != nil {
			return err
		}
	}
	for _, tier := range r.QuadTiers {
		if !tier.Match.isQuadKind() {
			return fmt.Errorf("%w: quad tier %q has unknown match %q", ErrInvalidRuleSet, tier.Label, tier.Match)
		}
		if err := validateTier(tier, labels); err != nil {
			return err
		}
		for _, bonus := range tier.Bonuses {
			if !bonus.Match.isQuadKind() {
				return fmt.Errorf("%w: bonus tier %q has unknown match %q", ErrInvalidRuleSet, bonus.Label, bonus.Match)
			}
			if len(bonus.Bonuses) > 0 {
				return fmt.Errorf("%w: bonus tier %q cannot nest bonuses", ErrInvalidRuleSet, bonus.Label)
			}
			// bonus labels may repeat a top-level label
			if err := validateTier(bonus, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateTier(tier Tier, labels map[string]bool) error {
	if tier.Label == "" {
		return fmt.Errorf("%w: tier label is required", ErrInvalidRuleSet)
	}
	if tier.Rank < 1 || tier.Rank > 3 {
		return fmt.Errorf("%w: tier %q rank must be 1, 2 or 3", ErrInvalidRuleSet, tier.Label)
	}
	if tier.UnitAmount <= 0 {
		return fmt.Errorf("%w: tier %q amount must be positive", ErrInvalidRuleSet, tier.Label)
	}
	if labels != nil {
		if labels[tier.Label] {
			return fmt.Errorf("%w: duplicate tier label %q", ErrInvalidRuleSet, tier.Label)
		}
		labels[tier.Label] = true
	}
	return nil
}
