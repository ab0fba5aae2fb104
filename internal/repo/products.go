package repo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

const (
	productKindDinner     = "dinner"
	productKindAdditional = "additional"
)

// Products persists catalog-backed lines and standalone menu items.
type Products struct {
	db txStarter
}

func NewProducts(db txStarter) *Products {
	return &Products{db: db}
}

// CreateCatalogBackedLine stores a product for one dinner and style with the
// dinner's default components copied in at their catalog prices.
func (p *Products) CreateCatalogBackedLine(ctx context.Context, req model.LineRecordRequest) (model.LineRecord, error) {
	var rec model.LineRecord
	err := inTx(ctx, p.db, func(tx pgx.Tx) error {
		var err error
		rec, err = createDinnerProduct(ctx, tx, req)
		return err
	})
	if err != nil {
		return model.LineRecord{}, err
	}
	logx.Debug().Str("product_id", rec.ProductID).Str("dinner_id", req.DinnerID).Int("quantity", req.Quantity).Msg("dinner product created")
	return rec, nil
}

func createDinnerProduct(ctx context.Context, q querier, req model.LineRecordRequest) (model.LineRecord, error) {
	userID, err := parseID("user", req.UserID)
	if err != nil {
		return model.LineRecord{}, err
	}
	dinnerID, err := parseID("dinner", req.DinnerID)
	if err != nil {
		return model.LineRecord{}, err
	}
	styleID, err := parseID("serving style", req.ServingStyleID)
	if err != nil {
		return model.LineRecord{}, err
	}
	if req.Quantity < 1 {
		return model.LineRecord{}, errx.BadRequest(errx.ErrInvalidQuantity, "")
	}

	var basePrice, extraPrice pgtype.Numeric
	err = q.QueryRow(ctx, `
		SELECT d.base_price, s.extra_price
		FROM dinners d, serving_styles s
		WHERE d.id = $1 AND s.id = $2`, dinnerID, styleID).Scan(&basePrice, &extraPrice)
	if err != nil {
		return model.LineRecord{}, errx.WrapPostgres(err)
	}
	base, err := fromNumeric(basePrice)
	if err != nil {
		return model.LineRecord{}, err
	}
	extra, err := fromNumeric(extraPrice)
	if err != nil {
		return model.LineRecord{}, err
	}

	rows, err := q.Query(ctx, `
		SELECT mi.id, mi.name, dmi.default_quantity, mi.unit_price
		FROM dinner_menu_items dmi
		JOIN menu_items mi ON mi.id = dmi.menu_item_id
		WHERE dmi.dinner_id = $1
		ORDER BY dmi.position, mi.name`, dinnerID)
	if err != nil {
		return model.LineRecord{}, errx.WrapPostgres(err)
	}
	components, err := collect(rows, scanComponentDefaults)
	if err != nil {
		return model.LineRecord{}, err
	}

	unit := base + extra
	productID := uuid.New()
	_, err = q.Exec(ctx, `
		INSERT INTO products (id, user_id, kind, dinner_id, serving_style_id, quantity, unit_price, total_price, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		productID, userID, productKindDinner, dinnerID, styleID, req.Quantity,
		toNumeric(unit), toNumeric(unit.Times(req.Quantity)), req.Address)
	if err != nil {
		return model.LineRecord{}, errx.WrapPostgres(err)
	}

	for _, c := range components {
		_, err = q.Exec(ctx, `
			INSERT INTO product_menu_items (product_id, menu_item_id, default_quantity, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			productID, c.MenuItemID, c.DefaultQuantity, c.Quantity, toNumeric(c.UnitPrice), toNumeric(c.UnitPrice.Times(c.Quantity)))
		if err != nil {
			return model.LineRecord{}, errx.WrapPostgres(err)
		}
	}

	return model.LineRecord{
		ProductID:  productID.String(),
		UnitPrice:  unit,
		TotalPrice: unit.Times(req.Quantity),
		Components: components,
	}, nil
}

func scanComponentDefaults(row pgx.CollectableRow) (model.ComponentCustomization, error) {
	var (
		c     model.ComponentCustomization
		id    uuid.UUID
		price pgtype.Numeric
	)
	if err := row.Scan(&id, &c.Name, &c.DefaultQuantity, &price); err != nil {
		return c, err
	}
	c.MenuItemID = id.String()
	c.Quantity = c.DefaultQuantity
	var err error
	c.UnitPrice, err = fromNumeric(price)
	return c, err
}

// UpdateLineComponentQuantity sets one component quantity, inserting the
// component when the product does not carry it yet, and reprices the product.
func (p *Products) UpdateLineComponentQuantity(ctx context.Context, productID, menuItemID string, quantity int) error {
	pid, err := parseID("product", productID)
	if err != nil {
		return err
	}
	mid, err := parseID("menu item", menuItemID)
	if err != nil {
		return err
	}
	if quantity < 0 {
		return errx.BadRequest(fmt.Errorf("component quantity %d", quantity), "")
	}

	return inTx(ctx, p.db, func(tx pgx.Tx) error {
		if err := upsertComponent(ctx, tx, pid, mid, quantity); err != nil {
			return err
		}
		return repriceProduct(ctx, tx, pid)
	})
}

func upsertComponent(ctx context.Context, q querier, productID, menuItemID uuid.UUID, quantity int) error {
	tag, err := q.Exec(ctx, `
		INSERT INTO product_menu_items (product_id, menu_item_id, default_quantity, quantity, unit_price, line_total)
		SELECT p.id, mi.id, COALESCE(dmi.default_quantity, 0), $3::int, mi.unit_price, mi.unit_price * $3::int
		FROM products p
		JOIN menu_items mi ON mi.id = $2
		LEFT JOIN dinner_menu_items dmi ON dmi.dinner_id = p.dinner_id AND dmi.menu_item_id = mi.id
		WHERE p.id = $1 AND p.kind = 'dinner'
		ON CONFLICT (product_id, menu_item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    line_total = product_menu_items.unit_price * EXCLUDED.quantity`, productID, menuItemID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return lineNotFound(productID.String())
	}
	return nil
}

// repriceProduct recomputes unit and total price from the dinner, the style
// and the component deltas.
func repriceProduct(ctx context.Context, q querier, productID uuid.UUID) error {
	_, err := q.Exec(ctx, `
		WITH priced AS (
			SELECT p.id,
			       d.base_price + s.extra_price
			       + COALESCE(SUM((pmi.quantity - pmi.default_quantity) * pmi.unit_price), 0) AS unit
			FROM products p
			JOIN dinners d ON d.id = p.dinner_id
			JOIN serving_styles s ON s.id = p.serving_style_id
			LEFT JOIN product_menu_items pmi ON pmi.product_id = p.id
			WHERE p.id = $1
			GROUP BY p.id, d.base_price, s.extra_price
		)
		UPDATE products p
		SET unit_price = priced.unit,
		    total_price = priced.unit * p.quantity,
		    updated_at = now()
		FROM priced
		WHERE p.id = priced.id`, productID)
	return err
}

// UpdateLineQuantity changes how many units the product stands for.
func (p *Products) UpdateLineQuantity(ctx context.Context, productID string, quantity int) error {
	pid, err := parseID("product", productID)
	if err != nil {
		return err
	}
	if quantity < 1 {
		return errx.BadRequest(errx.ErrInvalidQuantity, "")
	}
	tag, err := p.db.Exec(ctx, `
		UPDATE products
		SET quantity = $2::int, total_price = unit_price * $2::int, updated_at = now()
		WHERE id = $1`, pid, quantity)
	if err != nil {
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return lineNotFound(productID)
	}
	return nil
}

// LineComponents returns the stored components of a product.
func (p *Products) LineComponents(ctx context.Context, productID string) ([]model.ComponentCustomization, error) {
	pid, err := parseID("product", productID)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.Query(ctx, `
		SELECT mi.id, mi.name, pmi.default_quantity, pmi.quantity, pmi.unit_price
		FROM product_menu_items pmi
		JOIN menu_items mi ON mi.id = pmi.menu_item_id
		WHERE pmi.product_id = $1
		ORDER BY pmi.default_quantity = 0, mi.name`, pid)
	if err != nil {
		return nil, errx.WrapPostgres(err)
	}
	return collect(rows, func(row pgx.CollectableRow) (model.ComponentCustomization, error) {
		var (
			c     model.ComponentCustomization
			id    uuid.UUID
			price pgtype.Numeric
		)
		if err := row.Scan(&id, &c.Name, &c.DefaultQuantity, &c.Quantity, &price); err != nil {
			return c, err
		}
		c.MenuItemID = id.String()
		var err error
		c.UnitPrice, err = fromNumeric(price)
		return c, err
	})
}

// CreateAncillaryItem stores a standalone menu item ordered outside any dinner.
func (p *Products) CreateAncillaryItem(ctx context.Context, req model.AncillaryRequest) (model.AncillaryItem, error) {
	return createAncillaryProduct(ctx, p.db, req)
}

func createAncillaryProduct(ctx context.Context, q querier, req model.AncillaryRequest) (model.AncillaryItem, error) {
	userID, err := parseID("user", req.UserID)
	if err != nil {
		return model.AncillaryItem{}, err
	}
	itemID, err := parseID("menu item", req.MenuItemID)
	if err != nil {
		return model.AncillaryItem{}, err
	}
	if req.Quantity < 1 {
		return model.AncillaryItem{}, errx.BadRequest(errx.ErrInvalidQuantity, "")
	}

	var (
		name  string
		price pgtype.Numeric
	)
	err = q.QueryRow(ctx, `SELECT name, unit_price FROM menu_items WHERE id = $1`, itemID).Scan(&name, &price)
	if err != nil {
		return model.AncillaryItem{}, errx.WrapPostgres(err)
	}
	unit, err := fromNumeric(price)
	if err != nil {
		return model.AncillaryItem{}, err
	}

	productID := uuid.New()
	_, err = q.Exec(ctx, `
		INSERT INTO products (id, user_id, kind, menu_item_id, quantity, unit_price, total_price, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		productID, userID, productKindAdditional, itemID, req.Quantity,
		toNumeric(unit), toNumeric(unit.Times(req.Quantity)), req.Address)
	if err != nil {
		return model.AncillaryItem{}, errx.WrapPostgres(err)
	}

	return model.AncillaryItem{
		ProductID:  productID.String(),
		MenuItemID: itemID.String(),
		Name:       name,
		Quantity:   req.Quantity,
		UnitPrice:  unit,
		TotalPrice: unit.Times(req.Quantity),
	}, nil
}

// syncProduct makes the stored product agree with the conversation's price
// and quantity at checkout.
func syncProduct(ctx context.Context, q querier, productID uuid.UUID, userID uuid.UUID, quantity int, unit model.Money) error {
	tag, err := q.Exec(ctx, `
		UPDATE products
		SET quantity = $3, unit_price = $4, total_price = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		productID, userID, quantity, toNumeric(unit), toNumeric(unit.Times(quantity)))
	if err != nil {
		return errx.WrapPostgres(err)
	}
	if tag.RowsAffected() == 0 {
		return lineNotFound(productID.String())
	}
	return nil
}

func lineNotFound(productID string) error {
	return errx.New(fmt.Errorf("product %s: %w", productID, errx.ErrLineNotFound), http.StatusNotFound, errx.NotFoundMessage)
}
