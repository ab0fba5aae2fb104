package dialogue

import (
	"slices"
	"strings"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
)

// turnContext is the immutable value threaded through an intent handler.
// Handlers return modified copies; slices are replaced, never written in place.
type turnContext struct {
	userID     string
	utterance  string
	intent     model.Intent
	entities   model.EntityBag
	llmMessage string
	addresses  []string

	lines     []model.OrderLine
	ancillary []model.AncillaryItem
	address   string
	note      string

	// state is derived from lines and address when left empty.
	state   model.FlowState
	action  model.UIAction
	message string
	update  model.StoreUpdate
	order   *model.PlacedOrder
}

func newTurnContext(in model.TurnInput, it model.Interpretation) turnContext {
	return turnContext{
		userID:     in.UserID,
		utterance:  strings.TrimSpace(in.Message),
		intent:     it.Intent,
		entities:   it.Entities,
		llmMessage: strings.TrimSpace(it.Message),
		addresses:  slices.Clone(in.Addresses),
		lines:      slices.Clone(in.Lines),
		ancillary:  slices.Clone(in.Ancillary),
		address:    strings.TrimSpace(in.SelectedAddress),
		note:       strings.TrimSpace(in.SpecialRequest),
	}
}

// respond sets the reply. An empty state means "derive from the cart".
func (tc turnContext) respond(state model.FlowState, action model.UIAction, msg string) turnContext {
	tc.state = state
	tc.action = action
	tc.message = msg
	return tc
}

func (tc turnContext) withLines(lines []model.OrderLine) turnContext {
	tc.lines = lines
	return tc
}

func (tc turnContext) total() model.Money {
	return cart.GrandTotal(tc.lines, tc.ancillary)
}

func (tc turnContext) derivedState() model.FlowState {
	return DeriveState(tc.lines, tc.address)
}

// readyToCheckout reports whether an order could be placed right now.
func (tc turnContext) readyToCheckout() bool {
	if tc.address == "" || len(cart.PendingIndexes(tc.lines)) > 0 {
		return false
	}
	return len(tc.lines) > 0 || len(tc.ancillary) > 0
}

func (tc turnContext) result() model.TurnResult {
	state := tc.state
	if state == "" {
		state = tc.derivedState()
	}
	action := tc.action
	if action == "" {
		action = model.UIActionNone
	}

	var update *model.StoreUpdate
	if !tc.update.Empty() {
		u := tc.update
		update = &u
	}

	res := model.TurnResult{
		UserMessage:      tc.utterance,
		AssistantMessage: tc.message,
		FlowState:        state,
		UIAction:         action,
		Lines:            nonNil(tc.lines),
		TotalPrice:       tc.total(),
		SelectedAddress:  tc.address,
		Addresses:        nonNil(tc.addresses),
		StoreUpdate:      update,
		Ancillary:        nonNil(tc.ancillary),
		SpecialRequest:   tc.note,
	}
	if tc.order != nil {
		res.OrderID = tc.order.OrderID
		res.OrderNumber = tc.order.OrderNumber
	}
	return res
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
