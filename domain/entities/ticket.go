package entities

// TicketKind distinguishes 4-digit and 2-digit wagers
type TicketKind string

const (
	// TicketKindQuad is a 4-digit wager ("billete")
	TicketKindQuad TicketKind = "quad"
	// TicketKindPair is a 2-digit wager ("chance")
	TicketKindPair TicketKind = "pair"
)

// Unit prices per ticket kind
const (
	QuadUnitPrice Cents = 100
	PairUnitPrice Cents = 25
)

// MaxLineQuantity bounds the units on one line item
const MaxLineQuantity int64 = 1_000_000

// Digits returns the number length for the kind
func (k TicketKind) Digits() int {
	switch k {
	case TicketKindQuad:
		return 4
	case TicketKindPair:
		return 2
	}
	return 0
}

// UnitPrice returns the sale price of one unit of the kind
func (k TicketKind) UnitPrice() Cents {
	switch k {
	case TicketKindQuad:
		return QuadUnitPrice
	case TicketKindPair:
		return PairUnitPrice
	}
	return 0
}

// IsValid returns true for known kinds
func (k TicketKind) IsValid() bool {
	return k == TicketKindQuad || k == TicketKindPair
}

// KindForNumber derives the ticket kind from the number length
func KindForNumber(number string) (TicketKind, error) {
	if !isDigits(number) {
		return "", newTicketError("number", "must contain only digits")
	}
	switch len(number) {
	case 4:
		return TicketKindQuad, nil
	case 2:
		return TicketKindPair, nil
	}
	return "", newTicketError("number", "must be 2 or 4 digits")
}

// TicketLineItem is one wagered number on an invoice
type TicketLineItem struct {
	ID        int64      `db:"id"`
	InvoiceID int64      `db:"invoice_id"`
	DrawID    int64      `db:"draw_id"`
	ClientID  int64      `db:"client_id"`
	SellerID  int64      `db:"seller_id"`
	Number    string     `db:"number"`
	Kind      TicketKind `db:"kind"`
	Quantity  int64      `db:"quantity"`
	UnitPrice Cents      `db:"unit_price_cents"`
	Subtotal  Cents      `db:"subtotal_cents"`
}

// Validate checks number format, kind consistency and quantity
func (t *TicketLineItem) Validate() error {
	kind, err := KindForNumber(t.Number)
	if err != nil {
		return err
	}
	if t.Kind != kind {
		return newTicketError("kind", "does not match number length")
	}
	return validateQuantity(t.Quantity)
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return newTicketError("quantity", "must be positive")
	}
	if quantity > MaxLineQuantity {
		return newTicketError("quantity", "too large")
	}
	return nil
}
