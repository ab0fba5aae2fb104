// Package dialogue advances the ordering conversation one turn at a time.
//
// The flow state is derived from the caller-held lines and address, then each
// intent is dispatched to a handler that takes a turnContext and returns the
// next one. Handlers never mutate the context they receive.
package dialogue

import (
	"context"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// Catalog resolves names and ids against the cached catalog.
type Catalog interface {
	ResolveDinner(name string) (model.Dinner, bool)
	ResolveStyle(name string) (model.ServingStyle, bool)
	ResolveMenuItem(name string) (model.MenuItem, bool)
	DinnerByID(id string) (model.Dinner, bool)
	StyleByID(id string) (model.ServingStyle, bool)
	IsStyleCompatible(dinnerName, styleName string) bool
	AvailableStyleNames(dinnerName string) string
	Snapshot() (model.CatalogSnapshot, error)
}

// Products persists catalog-backed lines and their customizations.
type Products interface {
	CreateCatalogBackedLine(ctx context.Context, req model.LineRecordRequest) (model.LineRecord, error)
	CreateAncillaryItem(ctx context.Context, req model.AncillaryRequest) (model.AncillaryItem, error)
	UpdateLineComponentQuantity(ctx context.Context, productID, menuItemID string, quantity int) error
	UpdateLineQuantity(ctx context.Context, productID string, quantity int) error
	LineComponents(ctx context.Context, productID string) ([]model.ComponentCustomization, error)
}

// Orders turns a conversation cart into a persisted order in one transaction.
type Orders interface {
	PlaceOrder(ctx context.Context, req model.CheckoutRequest) (model.PlacedOrder, error)
}

// OrderEvents is notified after an order is placed.
type OrderEvents interface {
	OrderPlaced(ctx context.Context, order model.PlacedOrder) error
}

type intentHandler func(ctx context.Context, tc turnContext) turnContext

type Engine struct {
	catalog  Catalog
	products Products
	orders   Orders
	events   OrderEvents
	handlers map[model.Intent]intentHandler
}

type Option func(*Engine)

// WithOrderEvents publishes placed orders to ev.
func WithOrderEvents(ev OrderEvents) Option {
	return func(e *Engine) {
		e.events = ev
	}
}

func NewEngine(catalog Catalog, products Products, orders Orders, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		products: products,
		orders:   orders,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[model.Intent]intentHandler{
		model.IntentOrderMenu:         e.handleOrderMenu,
		model.IntentSelectStyle:       e.handleSelectStyle,
		model.IntentSetQuantity:       e.handleSetQuantity,
		model.IntentSelectAddress:     e.handleSelectAddress,
		model.IntentAddToCart:         e.handleCheckout,
		model.IntentConfirmOrder:      e.handleCheckout,
		model.IntentConfirmYes:        e.handleConfirmYes,
		model.IntentConfirmNo:         e.handleConfirmNo,
		model.IntentEditOrder:         e.handleEditOrder,
		model.IntentRemoveItem:        e.handleRemoveItem,
		model.IntentCancelOrder:       e.handleCancelOrder,
		model.IntentCustomizeMenu:     e.handleCustomize,
		model.IntentAddAdditionalMenu: e.handleAdditionalMenu,
		model.IntentSetMemo:           e.handleSetMemo,
		model.IntentSkipCustomize:     e.handleSkipCustomize,
		model.IntentAskOrderStatus:    e.handleOrderStatus,
		model.IntentAskMenuInfo:       e.handleMenuInfo,
		model.IntentGreeting:          e.handleGreeting,
		model.IntentUnknown:           e.handleUnknown,
	}
	return e
}

// Process runs one turn. It never fails: every problem becomes a reply.
func (e *Engine) Process(ctx context.Context, in model.TurnInput, it model.Interpretation) model.TurnResult {
	tc := e.hydrate(ctx, newTurnContext(in, it))

	logx.Debug().
		Str("user_id", tc.userID).
		Str("intent", string(tc.intent)).
		Str("state", string(DeriveState(tc.lines, tc.address))).
		Int("lines", len(tc.lines)).
		Bool("fallback", it.Fallback).
		Msg("dialogue turn")

	if tc.intent.ImpliesOrdering() && tc.address == "" {
		return e.requireAddress(tc).result()
	}

	h, ok := e.handlers[tc.intent]
	if !ok {
		h = e.handleUnknown
	}
	return h(ctx, tc).result()
}

// hydrate restores fields a client may have dropped and re-establishes the price invariant.
func (e *Engine) hydrate(ctx context.Context, tc turnContext) turnContext {
	lines := make([]model.OrderLine, 0, len(tc.lines))
	for _, l := range tc.lines {
		if l.BasePrice == 0 {
			if d, ok := e.catalog.DinnerByID(l.DinnerID); ok {
				l.BasePrice = d.BasePrice
			}
		}
		if l.StylePrice == 0 && l.ServingStyleID != "" {
			if s, ok := e.catalog.StyleByID(l.ServingStyleID); ok {
				l.StylePrice = s.ExtraPrice
			}
		}
		if l.IsCatalogBacked() && len(l.Components) == 0 {
			comps, err := e.products.LineComponents(ctx, l.ProductID)
			if err != nil {
				logx.Warn().Err(err).Str("product_id", l.ProductID).Msg("cannot load line components")
			} else {
				l.Components = comps
			}
		}
		lines = append(lines, cart.Reprice(l))
	}
	tc.lines = lines
	return tc
}
