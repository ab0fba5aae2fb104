package dialogue

import (
	"github.com/mrdaeback/voice-order/internal/agent/model"
)

// DeriveState infers the flow state from the caller-held cart.
// Customizing, ReadyToCheckout and Completed are only ever set by handlers.
func DeriveState(lines []model.OrderLine, address string) model.FlowState {
	if len(lines) == 0 && address == "" {
		return model.StateIdle
	}
	for _, l := range lines {
		if !l.HasStyle() {
			return model.StateSelectingStyle
		}
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return model.StateSelectingQuantity
		}
	}
	if address == "" {
		return model.StateSelectingAddress
	}
	if len(lines) == 0 {
		return model.StateSelectingMenu
	}
	return model.StateAskingMore
}
