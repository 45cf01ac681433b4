package prizes

import (
	"bytes"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"raffler/domain/entities"
)

type ruleSetFile struct {
	Name                        string     `yaml:"name"`
	Version                     int        `yaml:"version"`
	Description                 string     `yaml:"description,omitempty"`
	RequireFourDigitLowerPrizes bool       `yaml:"require_four_digit_lower_prizes"`
	PairTiers                   []tierFile `yaml:"pair_tiers,omitempty"`
	QuadTiers                   []tierFile `yaml:"quad_tiers,omitempty"`
}

type tierFile struct {
	Label   string     `yaml:"label"`
	Rank    int        `yaml:"rank"`
	Match   string     `yaml:"match"`
	Amount  string     `yaml:"amount"` // currency units, e.g. "2000" or "0.50"
	Bonuses []tierFile `yaml:"bonuses,omitempty"`
}

// LoadRuleSetFile reads and validates a YAML rule set
func LoadRuleSetFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set file: %w", err)
	}
	rules, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("rule set file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRuleSet decodes and validates a YAML rule set. Unknown keys are rejected.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file ruleSetFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)
	}

	rules := &RuleSet{
		Name:                        file.Name,
		Version:                     file.Version,
		Description:                 file.Description,
		RequireFourDigitLowerPrizes: file.RequireFourDigitLowerPrizes,
	}
	var err error
	if rules.PairTiers, err = convertTiers(file.PairTiers); err != nil {
		return nil, err
	}
	if rules.QuadTiers, err = convertTiers(file.QuadTiers); err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

// MarshalRuleSet encodes a rule set in the file format read by ParseRuleSet
func MarshalRuleSet(rules *RuleSet) ([]byte, error) {
	file := ruleSetFile{
		Name:                        rules.Name,
		Version:                     rules.Version,
		Description:                 rules.Description,
		RequireFourDigitLowerPrizes: rules.RequireFourDigitLowerPrizes,
		PairTiers:                   tiersToFile(rules.PairTiers),
		QuadTiers:                   tiersToFile(rules.QuadTiers),
	}
	return yaml.Marshal(&file)
}

func convertTiers(in []tierFile) ([]Tier, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Tier, 0, len(in))
	for _, t := range in {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: tier %q amount %q: %v", ErrInvalidRuleSet, t.Label, t.Amount, err)
		}
		if !amount.Equal(amount.Round(2)) {
			return nil, fmt.Errorf("%w: tier %q amount %q has more than two decimals", ErrInvalidRuleSet, t.Label, t.Amount)
		}
		bonuses, err := convertTiers(t.Bonuses)
		if err != nil {
			return nil, err
		}
		out = append(out, Tier{
			Label:      t.Label,
			Rank:       t.Rank,
			Match:      MatchKind(t.Match),
			UnitAmount: entities.CentsFromDecimal(amount),
			Bonuses:    bonuses,
		})
	}
	return out, nil
}

func tiersToFile(in []Tier) []tierFile {
	if len(in) == 0 {
		return nil
	}
	out := make([]tierFile, 0, len(in))
	for _, t := range in {
		out = append(out, tierFile{
			Label:   t.Label,
			Rank:    t.Rank,
			Match:   string(t.Match),
			Amount:  t.UnitAmount.String(),
			Bonuses: tiersToFile(t.Bonuses),
		})
	}
	return out
}
