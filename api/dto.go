package api

import (
	"time"

	"raffler/domain/entities"
	"raffler/domain/interfaces"
)

type settleRequest struct {
	FirstPrize  string `json:"first_prize"`
	SecondPrize string `json:"second_prize"`
	ThirdPrize  string `json:"third_prize"`
	Recompute   bool   `json:"recompute"`
}

type saleRequest struct {
	DrawID   int64               `json:"draw_id"`
	ClientID int64               `json:"client_id"`
	Items    []entities.SaleLine `json:"items"`
}

type winnerDTO struct {
	ID               int64  `json:"id"`
	TicketLineItemID int64  `json:"ticket_line_item_id"`
	InvoiceID        int64  `json:"invoice_id"`
	ClientID         int64  `json:"client_id"`
	SellerID         int64  `json:"seller_id"`
	Number           string `json:"number"`
	Kind             string `json:"kind"`
	Tier             string `json:"tier"`
	Rank             int    `json:"rank"`
	UnitAmountCents  int64  `json:"unit_amount_cents"`
	Quantity         int64  `json:"quantity"`
	TotalPayoutCents int64  `json:"total_payout_cents"`
	RuleSet          string `json:"rule_set"`
}

type settlementResponse struct {
	DrawID           int64       `json:"draw_id"`
	RuleSet          string      `json:"rule_set"`
	WinnerCount      int         `json:"winner_count"`
	TotalPayoutCents int64       `json:"total_payout_cents"`
	Recomputed       bool        `json:"recomputed"`
	Replaced         int64       `json:"replaced"`
	Winners          []winnerDTO `json:"winners"`
}

type winnersResponse struct {
	DrawID  int64       `json:"draw_id"`
	Winners []winnerDTO `json:"winners"`
}

type reportResponse struct {
	Rows []*entities.CommissionReportRow `json:"rows"`
}

type lineItemDTO struct {
	ID            int64  `json:"id"`
	Number        string `json:"number"`
	Kind          string `json:"kind"`
	Quantity      int64  `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type invoiceResponse struct {
	ID         int64         `json:"id"`
	DrawID     int64         `json:"draw_id"`
	ClientID   int64         `json:"client_id"`
	SellerID   int64         `json:"seller_id"`
	TotalCents int64         `json:"total_cents"`
	CreatedAt  time.Time     `json:"created_at"`
	Items      []lineItemDTO `json:"items"`
}

func toWinnerDTOs(winners []*entities.WinnerRecord) []winnerDTO {
	out := make([]winnerDTO, 0, len(winners))
	for _, w := range winners {
		out = append(out, winnerDTO{
			ID:               w.ID,
			TicketLineItemID: w.TicketLineItemID,
			InvoiceID:        w.InvoiceID,
			ClientID:         w.ClientID,
			SellerID:         w.SellerID,
			Number:           w.Number,
			Kind:             string(w.Kind),
			Tier:             w.Tier,
			Rank:             w.Rank,
			UnitAmountCents:  int64(w.UnitAmount),
			Quantity:         w.Quantity,
			TotalPayoutCents: int64(w.TotalPayout),
			RuleSet:          w.RuleSet,
		})
	}
	return out
}

func toSettlementResponse(result *interfaces.SettlementResult) settlementResponse {
	return settlementResponse{
		DrawID:           result.DrawID,
		RuleSet:          result.RuleSet,
		WinnerCount:      result.WinnersWritten(),
		TotalPayoutCents: int64(result.TotalPayout),
		Recomputed:       result.Recomputed,
		Replaced:         result.Replaced,
		Winners:          toWinnerDTOs(result.Winners),
	}
}

func toInvoiceResponse(invoice *entities.Invoice) invoiceResponse {
	items := make([]lineItemDTO, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, lineItemDTO{
			ID:            item.ID,
			Number:        item.Number,
			Kind:          string(item.Kind),
			Quantity:      item.Quantity,
			SubtotalCents: int64(item.Subtotal),
		})
	}
	return invoiceResponse{
		ID:         invoice.ID,
		DrawID:     invoice.DrawID,
		ClientID:   invoice.ClientID,
		SellerID:   invoice.SellerID,
		TotalCents: int64(invoice.Total),
		CreatedAt:  invoice.CreatedAt,
		Items:      items,
	}
}
