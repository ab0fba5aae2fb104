package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

const (
	orderCurrency    = "KRW"
	orderNumberChars = 8
)

// Orders turns a conversation cart into a persisted order.
type Orders struct {
	db  txStarter
	now func() time.Time
}

func NewOrders(db txStarter) *Orders {
	return &Orders{db: db, now: time.Now}
}

// PlaceOrder writes products, cart, order and order items in one transaction.
// Nothing is written when any line is incomplete.
func (o *Orders) PlaceOrder(ctx context.Context, req model.CheckoutRequest) (model.PlacedOrder, error) {
	if err := req.Validate(); err != nil {
		return model.PlacedOrder{}, errx.BadRequest(err, "")
	}
	userID, err := parseID("user", req.UserID)
	if err != nil {
		return model.PlacedOrder{}, err
	}

	placed := model.PlacedOrder{
		OrderID:     uuid.NewString(),
		OrderNumber: NewOrderNumber(),
		CartID:      uuid.NewString(),
		UserID:      req.UserID,
		Address:     req.Address,
		Total:       req.Total(),
		Currency:    orderCurrency,
		LineCount:   len(req.Lines) + len(req.Ancillary),
		PlacedAt:    o.now().UTC(),
	}

	err = inTx(ctx, o.db, func(tx pgx.Tx) error {
		items, err := o.persistProducts(ctx, tx, userID, req)
		if err != nil {
			return err
		}
		return o.insertOrder(ctx, tx, userID, req, placed, items)
	})
	if err != nil {
		logx.Error().Err(err).Str("user_id", req.UserID).Int("lines", placed.LineCount).Msg("checkout failed")
		return model.PlacedOrder{}, err
	}
	return placed, nil
}

type orderItem struct {
	productID uuid.UUID
	name      string
	quantity  int
	unit      model.Money
	total     model.Money
}

func (o *Orders) persistProducts(ctx context.Context, tx pgx.Tx, userID uuid.UUID, req model.CheckoutRequest) ([]orderItem, error) {
	items := make([]orderItem, 0, len(req.Lines)+len(req.Ancillary))

	for _, line := range req.Lines {
		productID := line.ProductID
		if productID == "" {
			rec, err := createDinnerProduct(ctx, tx, model.LineRecordRequest{
				UserID:         req.UserID,
				DinnerID:       line.DinnerID,
				ServingStyleID: line.ServingStyleID,
				Quantity:       line.Quantity,
				Address:        req.Address,
			})
			if err != nil {
				return nil, err
			}
			productID = rec.ProductID
		}
		pid, err := parseID("product", productID)
		if err != nil {
			return nil, err
		}
		if line.ProductID == "" {
			if err := replayComponents(ctx, tx, pid, line.Components); err != nil {
				return nil, err
			}
		}
		if err := syncProduct(ctx, tx, pid, userID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, orderItem{
			productID: pid,
			name:      strings.TrimSpace(line.DinnerName + " " + line.ServingStyleName),
			quantity:  line.Quantity,
			unit:      line.UnitPrice,
			total:     line.TotalPrice,
		})
	}

	for _, a := range req.Ancillary {
		productID := a.ProductID
		if productID == "" {
			created, err := createAncillaryProduct(ctx, tx, model.AncillaryRequest{
				UserID:     req.UserID,
				MenuItemID: a.MenuItemID,
				Quantity:   a.Quantity,
				Address:    req.Address,
			})
			if err != nil {
				return nil, err
			}
			productID = created.ProductID
		}
		pid, err := parseID("product", productID)
		if err != nil {
			return nil, err
		}
		if err := syncProduct(ctx, tx, pid, userID, a.Quantity, a.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, orderItem{productID: pid, name: a.Name, quantity: a.Quantity, unit: a.UnitPrice, total: a.TotalPrice})
	}
	return items, nil
}

func (o *Orders) insertOrder(ctx context.Context, tx pgx.Tx, userID uuid.UUID, req model.CheckoutRequest, placed model.PlacedOrder, items []orderItem) error {
	cartID := uuid.MustParse(placed.CartID)
	orderID := uuid.MustParse(placed.OrderID)

	if _, err := tx.Exec(ctx, `
		INSERT INTO carts (id, user_id, status, delivery_address, total_price, checked_out_at)
		VALUES ($1, $2, 'checked_out', $3, $4, $5)`,
		cartID, userID, req.Address, toNumeric(placed.Total), placed.PlacedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO cart_products (cart_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			cartID, it.productID, it.quantity, toNumeric(it.unit)); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, cart_id, status, delivery_address, special_request, total_price, currency, placed_at)
		VALUES ($1, $2, $3, $4, 'placed', $5, $6, $7, $8, $9)`,
		orderID, placed.OrderNumber, userID, cartID, req.Address, req.Memo,
		toNumeric(placed.Total), placed.Currency, placed.PlacedAt); err != nil {
		return err
	}

	for _, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, it.productID, it.name, it.quantity, toNumeric(it.unit), toNumeric(it.total)); err != nil {
			return err
		}
	}
	return nil
}

// NewOrderNumber returns a human-readable order number such as ORD-1A2B3C4D.
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:orderNumberChars])
}

// replayComponents writes the conversation's component quantities onto a
// product created at checkout, which starts from the dinner defaults.
func replayComponents(ctx context.Context, q querier, productID uuid.UUID, components []model.ComponentCustomization) error {
	for _, c := range components {
		if c.Quantity == c.DefaultQuantity {
			continue
		}
		mid, err := parseID("menu item", c.MenuItemID)
		if err != nil {
			return err
		}
		if c.Quantity < 0 {
			return errx.BadRequest(fmt.Errorf("component quantity %d", c.Quantity), "")
		}
		if err := upsertComponent(ctx, q, productID, mid, c.Quantity); err != nil {
			return err
		}
	}
	return nil
}
