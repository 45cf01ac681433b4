package prizes

import (
	"fmt"

	"raffler/domain/entities"
)

// Classification is one prize awarded to a ticket line item
type Classification struct {
	Ticket     *entities.TicketLineItem
	Tier       string
	Rank       int
	UnitAmount entities.Cents
}

// TotalPayout returns quantity × unit amount, or entities.ErrAmountOverflow
func (c Classification) TotalPayout() (entities.Cents, error) {
	return c.UnitAmount.Times(c.Ticket.Quantity)
}

// Engine classifies tickets against winning numbers using one rule set.
// It performs no I/O and is safe for concurrent use.
type Engine struct {
	rules *RuleSet
}

// NewEngine creates an engine for a validated rule set
func NewEngine(rules *RuleSet) (*Engine, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: rule set is required", ErrInvalidRuleSet)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Engine{rules: rules}, nil
}

// RuleSet returns the rule set the engine evaluates with
func (e *Engine) RuleSet() *RuleSet {
	return e.rules
}

// Evaluate returns every prize classification for the tickets, in ticket
// order. Tickets without a prize produce no classification.
func (e *Engine) Evaluate(numbers entities.WinningNumbers, tickets []*entities.TicketLineItem) ([]Classification, error) {
	if err := e.rules.ValidateNumbers(numbers); err != nil {
		return nil, err
	}

	var out []Classification
	for _, ticket := range tickets {
		if err := ticket.Validate(); err != nil {
			return nil, fmt.Errorf("ticket %d: %w", ticket.ID, err)
		}
		switch ticket.Kind {
		case entities.TicketKindPair:
			out = e.classifyPair(out, numbers, ticket)
		case entities.TicketKindQuad:
			out = e.classifyQuad(out, numbers, ticket)
		}
	}
	return out, nil
}

func (e *Engine) classifyPair(out []Classification, numbers entities.WinningNumbers, ticket *entities.TicketLineItem) []Classification {
	for _, tier := range e.rules.PairTiers {
		if ticket.Number == numbers.Pair(tier.Rank) {
			out = append(out, classify(ticket, tier))
		}
	}
	return out
}

func (e *Engine) classifyQuad(out []Classification, numbers entities.WinningNumbers, ticket *entities.TicketLineItem) []Classification {
	for _, tier := range e.rules.QuadTiers {
		if !matchQuad(tier, numbers, ticket.Number) {
			continue
		}
		out = append(out, classify(ticket, tier))
		for _, bonus := range tier.Bonuses {
			if matchQuad(bonus, numbers, ticket.Number) {
				out = append(out, classify(ticket, bonus))
			}
		}
		return out
	}
	return out
}

func classify(ticket *entities.TicketLineItem, tier Tier) Classification {
	return Classification{
		Ticket:     ticket,
		Tier:       tier.Label,
		Rank:       tier.Rank,
		UnitAmount: tier.UnitAmount,
	}
}

// matchQuad compares a 4-digit ticket with the prize of the tier's rank.
// Tiers against a 2-digit prize never match.
func matchQuad(tier Tier, numbers entities.WinningNumbers, number string) bool {
	if !numbers.IsFourDigit(tier.Rank) {
		return false
	}
	prize := numbers.Prize(tier.Rank)

	switch tier.Match {
	case MatchExact:
		return number == prize
	case MatchThreeDigits:
		return number[:3] == prize[:3] || number[1:] == prize[1:]
	case MatchFirst2AndLast1:
		return number[:2] == prize[:2] && number[3] == prize[3]
	case MatchFirst2OrLast2:
		return number[:2] == prize[:2] || number[2:] == numbers.Pair(tier.Rank)
	case MatchFirst2:
		return number[:2] == prize[:2]
	case MatchLast2:
		return number[2:] == prize[2:]
	case MatchLast1:
		return number[3] == prize[3]
	}
	return false
}
