package dialogue

import (
	"context"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
)

func (e *Engine) handleConfirmYes(ctx context.Context, tc turnContext) turnContext {
	if len(cart.PendingIndexes(tc.lines)) > 0 {
		return tc.respond("", model.UIActionNone, e.promptForState(tc))
	}
	if len(tc.lines) == 0 && len(tc.ancillary) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(msgEmptyCart))
	}
	return e.checkout(ctx, tc)
}

func (e *Engine) handleConfirmNo(_ context.Context, tc turnContext) turnContext {
	if len(tc.lines) == 0 && len(tc.ancillary) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage("알겠어요."))
	}
	if len(cart.PendingIndexes(tc.lines)) > 0 {
		return tc.respond("", model.UIActionNone, "알겠어요. "+e.promptForState(tc))
	}
	return tc.respond(model.StateAskingMore, model.UIActionNone, "알겠어요. "+msgAskMore)
}

// handleSkipCustomize accepts the default components and moves to payment.
func (e *Engine) handleSkipCustomize(_ context.Context, tc turnContext) turnContext {
	if !tc.readyToCheckout() {
		return tc.respond("", model.UIActionNone, e.promptForState(tc))
	}
	return tc.respond(model.StateReadyToCheckout, model.UIActionRequestPayment,
		"기본 구성으로 진행할게요.\n"+orderSummary(tc)+"\n결제를 진행해주세요.")
}

func (e *Engine) handleOrderStatus(_ context.Context, tc turnContext) turnContext {
	if len(tc.lines) == 0 && len(tc.ancillary) == 0 {
		return tc.respond("", model.UIActionNone, msgEmptyCart+" "+e.askMenuMessage(""))
	}
	return tc.respond("", model.UIActionNone, "현재 주문 내역이에요.\n"+orderSummary(tc))
}

func (e *Engine) handleMenuInfo(_ context.Context, tc turnContext) turnContext {
	if tc.llmMessage != "" {
		return tc.respond("", model.UIActionNone, tc.llmMessage)
	}
	return tc.respond("", model.UIActionNone, e.askMenuMessage(""))
}

func (e *Engine) handleGreeting(_ context.Context, tc turnContext) turnContext {
	if tc.llmMessage != "" {
		return tc.respond("", model.UIActionNone, tc.llmMessage)
	}
	return tc.respond("", model.UIActionNone, msgGreeting)
}

// handleUnknown re-asks for whatever the cart is waiting on, so nothing is lost.
func (e *Engine) handleUnknown(_ context.Context, tc turnContext) turnContext {
	return tc.respond("", model.UIActionNone, "죄송해요, 잘 이해하지 못했어요. "+e.promptForState(tc))
}
