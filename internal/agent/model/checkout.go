package model

import (
	"fmt"
	"time"

	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

// CheckoutRequest is everything needed to turn a conversation's cart into an order.
// Line prices come from the conversation, not from the catalog.
type CheckoutRequest struct {
	UserID    string
	Address   string
	Memo      string
	Lines     []OrderLine
	Ancillary []AncillaryItem
}

// Validate rejects requests that would produce a partial or empty order.
func (r CheckoutRequest) Validate() error {
	if r.Address == "" {
		return errx.ErrAddressRequired
	}
	if len(r.Lines) == 0 && len(r.Ancillary) == 0 {
		return errx.ErrEmptyCart
	}
	for i, line := range r.Lines {
		if line.DinnerID == "" || line.ServingStyleID == "" || line.Quantity < 1 {
			return fmt.Errorf("line %d (%s): %w", i+1, line.DinnerName, errx.ErrIncompleteLine)
		}
	}
	for i, item := range r.Ancillary {
		if item.MenuItemID == "" || item.Quantity < 1 {
			return fmt.Errorf("additional item %d (%s): %w", i+1, item.Name, errx.ErrIncompleteLine)
		}
	}
	return nil
}

// Total is the grand total of the request.
func (r CheckoutRequest) Total() Money {
	var total Money
	for _, l := range r.Lines {
		total += l.TotalPrice
	}
	for _, a := range r.Ancillary {
		total += a.TotalPrice
	}
	return total
}

// PlacedOrder is the result of a successful checkout.
type PlacedOrder struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CartID      string    `json:"cartId"`
	UserID      string    `json:"userId"`
	Address     string    `json:"deliveryAddress"`
	Total       Money     `json:"totalPrice"`
	Currency    string    `json:"currency"`
	LineCount   int       `json:"lineCount"`
	PlacedAt    time.Time `json:"placedAt"`
}
