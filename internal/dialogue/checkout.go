package dialogue

import (
	"context"
	"fmt"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// handleCheckout serves ADD_TO_CART and CONFIRM_ORDER. "X 담아줘" carries a
// menu name and is really an order for X.
func (e *Engine) handleCheckout(ctx context.Context, tc turnContext) turnContext {
	if tc.entities.MenuName != "" {
		if tc.address == "" {
			return e.requireAddress(tc)
		}
		return e.handleOrderMenu(ctx, tc)
	}
	if memo := tc.entities.SpecialRequest; memo != "" {
		tc.note = memo
		tc.update.SpecialRequest = memo
	}
	return e.checkout(ctx, tc)
}

// checkout abandons incomplete lines, then places the order. A failed write
// leaves the complete lines in place for a retry.
func (e *Engine) checkout(ctx context.Context, tc turnContext) turnContext {
	if dropped := cart.PendingIndexes(tc.lines); len(dropped) > 0 {
		logx.Debug().Str("user_id", tc.userID).Ints("line_indexes", dropped).Msg("dropping incomplete lines at checkout")
		tc.update.RemovedLineIndexes = append([]int(nil), dropped...)
		tc = tc.withLines(cart.CompleteLines(tc.lines))
	}

	if len(tc.lines) == 0 && len(tc.ancillary) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(msgEmptyCart))
	}
	if tc.address == "" {
		return e.requireAddress(tc)
	}

	req := model.CheckoutRequest{
		UserID:    tc.userID,
		Address:   tc.address,
		Memo:      tc.note,
		Lines:     tc.lines,
		Ancillary: tc.ancillary,
	}
	if err := req.Validate(); err != nil {
		logx.Warn().Err(err).Str("user_id", tc.userID).Msg("checkout request rejected")
		return tc.respond("", model.UIActionNone, e.promptForState(tc))
	}

	placed, err := e.orders.PlaceOrder(ctx, req)
	if err != nil {
		logx.Error().Err(err).Str("user_id", tc.userID).Int("lines", len(req.Lines)).Msg("checkout failed")
		return tc.respond(model.StateReadyToCheckout, model.UIActionShowConfirmModal, msgCheckoutFailed)
	}

	logx.Info().
		Str("user_id", tc.userID).
		Str("order_id", placed.OrderID).
		Str("order_number", placed.OrderNumber).
		Int64("total", int64(placed.Total)).
		Msg("order placed")

	if e.events != nil {
		if err := e.events.OrderPlaced(ctx, placed); err != nil {
			logx.Warn().Err(err).Str("order_id", placed.OrderID).Msg("cannot publish order event")
		}
	}

	tc = tc.withLines([]model.OrderLine{})
	tc.ancillary = []model.AncillaryItem{}
	tc.note = ""
	tc.update = model.StoreUpdate{ClearCart: true}
	tc.order = &placed
	return tc.respond(model.StateCompleted, model.UIActionOrderCompleted,
		fmt.Sprintf("주문이 완료되었어요! 주문번호는 %s이고, 총 %s입니다. 감사합니다.", placed.OrderNumber, placed.Total))
}
