package model

// ComponentCustomization is one customizable item inside a catalog-backed line.
type ComponentCustomization struct {
	MenuItemID      string `json:"menuItemId"`
	Name            string `json:"name"`
	DefaultQuantity int    `json:"defaultQuantity"`
	Quantity        int    `json:"currentQuantity"`
	UnitPrice       Money  `json:"unitPrice"`
}

// Delta is the price difference caused by deviating from the default quantity.
func (c ComponentCustomization) Delta() Money {
	return c.UnitPrice.Times(c.Quantity - c.DefaultQuantity)
}

// OrderLine is an in-progress cart entry held by the caller between turns.
// A line with no style or with quantity 0 is pending.
type OrderLine struct {
	DinnerID         string                   `json:"dinnerId"`
	DinnerName       string                   `json:"dinnerName"`
	ServingStyleID   string                   `json:"servingStyleId,omitempty"`
	ServingStyleName string                   `json:"servingStyleName,omitempty"`
	Quantity         int                      `json:"quantity"`
	BasePrice        Money                    `json:"basePrice"`
	StylePrice       Money                    `json:"styleExtraPrice"`
	UnitPrice        Money                    `json:"unitPrice"`
	TotalPrice       Money                    `json:"totalPrice"`
	ProductID        string                   `json:"productId,omitempty"`
	Components       []ComponentCustomization `json:"menuItems,omitempty"`
}

// HasStyle reports whether a serving style was chosen.
func (l OrderLine) HasStyle() bool {
	return l.ServingStyleName != ""
}

// IsPending reports whether the line still lacks a style or a quantity.
func (l OrderLine) IsPending() bool {
	return !l.HasStyle() || l.Quantity <= 0
}

// IsComplete is the negation of IsPending.
func (l OrderLine) IsComplete() bool {
	return !l.IsPending()
}

// IsCatalogBacked reports whether a persisted product record exists for the line.
func (l OrderLine) IsCatalogBacked() bool {
	return l.ProductID != ""
}

// AncillaryItem is a standalone menu item ordered outside any dinner.
type AncillaryItem struct {
	ProductID  string `json:"productId,omitempty"`
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  Money  `json:"unitPrice"`
	TotalPrice Money  `json:"totalPrice"`
}

// LineRecordRequest asks the product store to persist a catalog-backed line.
type LineRecordRequest struct {
	UserID         string
	DinnerID       string
	ServingStyleID string
	Quantity       int
	Address        string
}

// LineRecord is the persisted product created for a line.
type LineRecord struct {
	ProductID  string
	UnitPrice  Money
	TotalPrice Money
	Components []ComponentCustomization
}

// AncillaryRequest asks the product store to persist a standalone menu item.
type AncillaryRequest struct {
	UserID     string
	MenuItemID string
	Quantity   int
	Address    string
}
