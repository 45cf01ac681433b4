package entities

import (
	"fmt"
	"time"
)

// WinnerRecord is one prize classification of a ticket line item.
// Winner records are only written by settlement and are replaced as a set per draw.
type WinnerRecord struct {
	ID               int64      `db:"id"`
	DrawID           int64      `db:"draw_id"`
	TicketLineItemID int64      `db:"ticket_line_item_id"`
	InvoiceID        int64      `db:"invoice_id"`
	ClientID         int64      `db:"client_id"`
	SellerID         int64      `db:"seller_id"`
	Number           string     `db:"number"`
	Kind             TicketKind `db:"kind"`
	Tier             string     `db:"tier"`
	Rank             int        `db:"rank"`
	UnitAmount       Cents      `db:"unit_amount_cents"`
	Quantity         int64      `db:"quantity"`
	TotalPayout      Cents      `db:"total_payout_cents"`
	RuleSet          string     `db:"rule_set"`
	CreatedAt        time.Time  `db:"created_at"`
}

// NewWinnerRecord builds a winner record for a classified ticket.
// It fails when quantity × unit amount does not fit in Cents.
func NewWinnerRecord(drawID int64, ticket *TicketLineItem, tier string, rank int, unitAmount Cents, ruleSet string) (*WinnerRecord, error) {
	payout, err := unitAmount.Times(ticket.Quantity)
	if err != nil {
		return nil, fmt.Errorf("ticket %d tier %s: %w", ticket.ID, tier, err)
	}
	return &WinnerRecord{
		DrawID:           drawID,
		TicketLineItemID: ticket.ID,
		InvoiceID:        ticket.InvoiceID,
		ClientID:         ticket.ClientID,
		SellerID:         ticket.SellerID,
		Number:           ticket.Number,
		Kind:             ticket.Kind,
		Tier:             tier,
		Rank:             rank,
		UnitAmount:       unitAmount,
		Quantity:         ticket.Quantity,
		TotalPayout:      payout,
		RuleSet:          ruleSet,
	}, nil
}
