package prizes

import (
	"errors"
	"fmt"
	"sort"

	"raffler/domain/entities"
)

// DefaultRuleSetID is the rule set used when none is configured
const DefaultRuleSetID = "cascade-v1"

// ErrUnknownRuleSet is returned when a rule set id is not registered
var ErrUnknownRuleSet = errors.New("unknown rule set")

var pairTiers = []Tier{
	{Label: "pair-rank1", Rank: 1, Match: MatchPair, UnitAmount: entities.Units(14)},
	{Label: "pair-rank2", Rank: 2, Match: MatchPair, UnitAmount: entities.Units(3)},
	{Label: "pair-rank3", Rank: 3, Match: MatchPair, UnitAmount: entities.Units(2)},
}

// Cascade returns the default prize table: one prize per quad ticket, highest first.
func Cascade() *RuleSet {
	return &RuleSet{
		Name:        "cascade",
		Version:     1,
		Description: "Single prize per quad ticket in strict precedence order",
		PairTiers:   append([]Tier(nil), pairTiers...),
		QuadTiers: []Tier{
			{Label: "exact-rank1", Rank: 1, Match: MatchExact, UnitAmount: entities.Units(2000)},
			{Label: "exact-rank2", Rank: 2, Match: MatchExact, UnitAmount: entities.Units(600)},
			{Label: "exact-rank3", Rank: 3, Match: MatchExact, UnitAmount: entities.Units(300)},
			{Label: "3digits-rank1", Rank: 1, Match: MatchThreeDigits, UnitAmount: entities.Units(50)},
			{Label: "3digits-rank2", Rank: 2, Match: MatchThreeDigits, UnitAmount: entities.Units(20)},
			{Label: "3digits-rank3", Rank: 3, Match: MatchThreeDigits, UnitAmount: entities.Units(10)},
			{Label: "2first+last-rank1", Rank: 1, Match: MatchFirst2AndLast1, UnitAmount: entities.Units(4)},
			{Label: "2digits-rank1", Rank: 1, Match: MatchFirst2OrLast2, UnitAmount: entities.Units(3)},
			{Label: "2digits-rank2", Rank: 2, Match: MatchLast2, UnitAmount: entities.Units(2)},
			{Label: "last-rank1", Rank: 1, Match: MatchLast1, UnitAmount: entities.Units(1)},
			{Label: "2digits-rank3", Rank: 3, Match: MatchLast2, UnitAmount: entities.Units(1)},
		},
	}
}

// Exceptions returns the alternate prize table where an exact first prize
// also collects the first-two-digits and last-digit prizes. All three
// prizes must be four digits.
func Exceptions() *RuleSet {
	return &RuleSet{
		Name:                        "exceptions",
		Version:                     2,
		Description:                 "Exact first prize also pays first-two and last-digit prizes",
		RequireFourDigitLowerPrizes: true,
		PairTiers:                   append([]Tier(nil), pairTiers...),
		QuadTiers: []Tier{
			{
				Label: "exact-rank1", Rank: 1, Match: MatchExact, UnitAmount: entities.Units(2000),
				Bonuses: []Tier{
					{Label: "2first-rank1", Rank: 1, Match: MatchFirst2, UnitAmount: entities.Units(3)},
					{Label: "last-rank1", Rank: 1, Match: MatchLast1, UnitAmount: entities.Units(1)},
				},
			},
			{Label: "exact-rank2", Rank: 2, Match: MatchExact, UnitAmount: entities.Units(600)},
			{Label: "exact-rank3", Rank: 3, Match: MatchExact, UnitAmount: entities.Units(300)},
			{Label: "3digits-rank1", Rank: 1, Match: MatchThreeDigits, UnitAmount: entities.Units(50)},
			{Label: "3digits-rank2", Rank: 2, Match: MatchThreeDigits, UnitAmount: entities.Units(20)},
			{Label: "3digits-rank3", Rank: 3, Match: MatchThreeDigits, UnitAmount: entities.Units(10)},
			{Label: "2last-rank1", Rank: 1, Match: MatchLast2, UnitAmount: entities.Units(3)},
			{Label: "2last-rank2", Rank: 2, Match: MatchLast2, UnitAmount: entities.Units(2)},
			{Label: "2last-rank3", Rank: 3, Match: MatchLast2, UnitAmount: entities.Units(1)},
			{Label: "2first-rank1", Rank: 1, Match: MatchFirst2, UnitAmount: entities.Units(3)},
			{Label: "last-rank1", Rank: 1, Match: MatchLast1, UnitAmount: entities.Units(1)},
		},
	}
}

var builtins = map[string]func() *RuleSet{
	"cascade-v1":    Cascade,
	"exceptions-v2": Exceptions,
}

// Builtin returns a fresh copy of a built-in rule set
func Builtin(id string) (*RuleSet, error) {
	build, ok := builtins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRuleSet, id)
	}
	return build(), nil
}

// BuiltinNames lists the ids of the built-in rule sets in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
