package dialogue

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	"github.com/mrdaeback/voice-order/internal/catalog"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

var lastMarkers = []string{"last", "마지막", "방금", "아까"}

// locateLine finds the line an edit refers to: an explicit 1-based index, a
// dinner name, or the last line when only a "last" marker or nothing is given.
func (e *Engine) locateLine(tc turnContext) int {
	if len(tc.lines) == 0 {
		return -1
	}
	ent := tc.entities
	if ent.LineIndex != nil {
		if i := *ent.LineIndex - 1; i >= 0 && i < len(tc.lines) {
			return i
		}
		return -1
	}
	if n, ok := parseOrdinal(tc.utterance); ok {
		if n <= len(tc.lines) {
			return n - 1
		}
		return -1
	}

	name := strings.ToLower(strings.TrimSpace(ent.MenuName))
	if name == "" || slices.ContainsFunc(lastMarkers, func(m string) bool { return strings.Contains(name, m) }) {
		return len(tc.lines) - 1
	}
	d, ok := e.catalog.ResolveDinner(ent.MenuName)
	if !ok {
		return -1
	}
	for i := len(tc.lines) - 1; i >= 0; i-- {
		if tc.lines[i].DinnerID == d.ID.String() || tc.lines[i].DinnerName == d.Name {
			return i
		}
	}
	return -1
}

func lineLabel(l model.OrderLine) string {
	if !l.HasStyle() {
		return dinnerLabel(l.DinnerName)
	}
	return fmt.Sprintf("%s %s", dinnerLabel(l.DinnerName), styleLabel(l.ServingStyleName))
}

func linesListing(lines []model.OrderLine) string {
	parts := make([]string, 0, len(lines))
	for i, l := range lines {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, lineLabel(l)))
	}
	return strings.Join(parts, ", ")
}

// afterChange picks the state following a cart edit: whatever is still
// pending, otherwise asking for more.
func afterChange(tc turnContext) model.FlowState {
	if len(cart.PendingIndexes(tc.lines)) > 0 {
		return tc.derivedState()
	}
	return model.StateAskingMore
}

func (e *Engine) handleEditOrder(ctx context.Context, tc turnContext) turnContext {
	if len(tc.lines) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(msgNothingToChange))
	}
	i := e.locateLine(tc)
	if i < 0 {
		return tc.respond("", model.UIActionNone, "어떤 메뉴를 변경할지 다시 말씀해주세요. "+linesListing(tc.lines))
	}

	ent := tc.entities
	if ent.StyleName == "" && ent.Quantity == nil {
		return tc.respond("", model.UIActionNone,
			fmt.Sprintf("%s의 스타일과 수량 중 무엇을 변경할까요?", lineLabel(tc.lines[i])))
	}
	if !tc.lines[i].HasStyle() {
		if ent.StyleName == "" {
			return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.askStyleMessage(tc.lines[i].DinnerName))
		}
		return e.applyStyleToPending(ctx, tc, ent.StyleName, ent.Quantity)
	}

	if ent.StyleName != "" {
		var ok bool
		if tc, ok = e.changeStyle(ctx, tc, i, ent.StyleName); !ok {
			return tc
		}
	}
	if ent.Quantity != nil {
		tc = e.setLineQuantity(ctx, tc, i, *ent.Quantity)
	}
	return tc.respond(afterChange(tc), tc.action, tc.message)
}

func (e *Engine) handleRemoveItem(ctx context.Context, tc turnContext) turnContext {
	if len(tc.lines) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(msgNothingToChange))
	}
	i := e.locateLine(tc)
	if i < 0 {
		return tc.respond("", model.UIActionNone, "어떤 메뉴를 삭제할까요? "+linesListing(tc.lines))
	}

	removed := tc.lines[i]
	tc = tc.withLines(cart.Remove(tc.lines, i))
	tc.update.RemovedLineIndexes = slices.Concat(tc.update.RemovedLineIndexes, []int{i})
	msg := fmt.Sprintf("%s을(를) 삭제했어요.", lineLabel(removed))

	if len(tc.lines) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionUpdateOrderList, e.askMenuMessage(msg))
	}
	if state := afterChange(tc); state != model.StateAskingMore {
		return tc.respond(state, model.UIActionUpdateOrderList, msg+" "+e.promptForState(tc))
	}
	return tc.respond(model.StateAskingMore, model.UIActionUpdateOrderList, msg+" "+totalSoFar(tc.total())+" "+msgAskMore)
}

// handleCancelOrder removes one line when a dinner is named, otherwise
// abandons the whole order.
func (e *Engine) handleCancelOrder(ctx context.Context, tc turnContext) turnContext {
	if tc.entities.MenuName != "" || tc.entities.LineIndex != nil {
		return e.handleRemoveItem(ctx, tc)
	}
	if len(tc.lines) == 0 && len(tc.ancillary) == 0 && tc.address == "" {
		return tc.respond(model.StateIdle, model.UIActionNone, "취소할 주문이 없어요. "+e.askMenuMessage(""))
	}

	tc = tc.withLines([]model.OrderLine{})
	tc.ancillary = []model.AncillaryItem{}
	tc.note = ""
	tc.address = ""
	tc.update = model.StoreUpdate{ClearCart: true}
	return tc.respond(model.StateIdle, model.UIActionShowCancelConfirm, msgCancelled)
}

// customizeTarget picks the line a component edit applies to.
func (e *Engine) customizeTarget(tc turnContext) int {
	if tc.entities.LineIndex != nil {
		if i := *tc.entities.LineIndex - 1; i >= 0 && i < len(tc.lines) && tc.lines[i].IsComplete() {
			return i
		}
		return -1
	}
	if n, ok := parseOrdinal(tc.utterance); ok {
		if i := n - 1; i < len(tc.lines) && tc.lines[i].IsComplete() {
			return i
		}
		return -1
	}

	match := componentMatcher(tc.entities.MenuItemName)
	for i, l := range tc.lines {
		if l.IsCatalogBacked() && cart.FindComponent(l, match) >= 0 {
			return i
		}
	}
	for i, l := range tc.lines {
		if l.IsCatalogBacked() {
			return i
		}
	}
	return slices.IndexFunc(tc.lines, model.OrderLine.IsComplete)
}

func componentMatcher(fragment string) func(string) bool {
	return func(name string) bool {
		return catalog.MatchComponentName(name, fragment)
	}
}

// magnitude reads a component delta without its sign. The interpreter
// sometimes reports "two fewer" as -2 alongside a REMOVE action.
func magnitude(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (e *Engine) handleCustomize(ctx context.Context, tc turnContext) turnContext {
	if len(tc.lines) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage("먼저 디너를 주문해주세요."))
	}
	ent := tc.entities
	if ent.MenuItemName == "" {
		return tc.respond(model.StateCustomizing, model.UIActionNone, msgAskComponent)
	}
	i := e.customizeTarget(tc)
	if i < 0 {
		return tc.respond("", model.UIActionNone, "구성품을 변경할 디너를 찾지 못했어요. "+e.promptForState(tc))
	}

	tc = e.backLines(ctx, tc, []int{i})
	line := tc.lines[i]
	ci := cart.FindComponent(line, componentMatcher(ent.MenuItemName))
	current := 0
	if ci >= 0 {
		current = line.Components[ci].Quantity
	}

	action := ent.Action
	if action == "" {
		action = model.ComponentAdd
		if ent.MenuItemQuantity != nil {
			action = model.ComponentSet
		}
	}

	var target int
	switch action {
	case model.ComponentRemove:
		if ci < 0 {
			return tc.respond(model.StateCustomizing, model.UIActionNone,
				fmt.Sprintf("%s에는 '%s' 구성품이 없어요.", lineLabel(line), ent.MenuItemName))
		}
		if ent.MenuItemQuantity != nil {
			target = max(current-magnitude(*ent.MenuItemQuantity), 0)
		}
	case model.ComponentSet:
		if ent.MenuItemQuantity == nil {
			return tc.respond(model.StateCustomizing, model.UIActionNone,
				fmt.Sprintf("'%s'을(를) 몇 개로 할까요?", ent.MenuItemName))
		}
		target = max(*ent.MenuItemQuantity, 0)
	default:
		delta := 1
		if ent.MenuItemQuantity != nil && *ent.MenuItemQuantity != 0 {
			delta = magnitude(*ent.MenuItemQuantity)
		}
		target = current + delta
	}

	if ci < 0 {
		if target <= 0 {
			return tc.respond(model.StateCustomizing, model.UIActionNone,
				fmt.Sprintf("%s에는 '%s' 구성품이 없어요.", lineLabel(line), ent.MenuItemName))
		}
		item, ok := e.catalog.ResolveMenuItem(ent.MenuItemName)
		if !ok {
			return tc.respond(model.StateCustomizing, model.UIActionNone,
				fmt.Sprintf("'%s' 구성품을 찾을 수 없어요.", ent.MenuItemName))
		}
		line = cart.AddComponent(line, item, target)
		ci = len(line.Components) - 1
	} else {
		updated, err := cart.SetComponentQuantity(line, line.Components[ci].MenuItemID, target)
		if err != nil {
			return tc.respond(model.StateCustomizing, model.UIActionNone, msgAskComponent)
		}
		line = updated
	}

	comp := line.Components[ci]
	tc = tc.withLines(cart.Replace(tc.lines, i, line))
	if line.IsCatalogBacked() {
		if err := e.products.UpdateLineComponentQuantity(ctx, line.ProductID, comp.MenuItemID, comp.Quantity); err != nil {
			logx.Warn().Err(err).Str("product_id", line.ProductID).Str("menu_item_id", comp.MenuItemID).Msg("cannot write component quantity")
		}
	}
	tc.update.MenuItemUpdates = slices.Concat(tc.update.MenuItemUpdates, []model.ComponentUpdate{{
		LineIndex:  i,
		ProductID:  line.ProductID,
		MenuItemID: comp.MenuItemID,
		Name:       comp.Name,
		Quantity:   comp.Quantity,
	}})

	msg := fmt.Sprintf("%s의 %s을(를) %d개로 변경했어요.", lineLabel(line), comp.Name, comp.Quantity)
	if comp.Quantity == 0 {
		msg = fmt.Sprintf("%s에서 %s을(를) 뺐어요.", lineLabel(line), comp.Name)
	}
	return tc.respond(model.StateCustomizing, model.UIActionUpdateOrderList,
		fmt.Sprintf("%s %s 더 변경하실 구성품이 있으신가요?", msg, totalSoFar(tc.total())))
}

func (e *Engine) handleAdditionalMenu(ctx context.Context, tc turnContext) turnContext {
	ent := tc.entities
	name := ent.MenuItemName
	if name == "" {
		name = ent.MenuName
	}
	if name == "" {
		return tc.respond("", model.UIActionNone, "어떤 메뉴를 추가할까요?")
	}
	item, ok := e.catalog.ResolveMenuItem(name)
	if !ok {
		return tc.respond("", model.UIActionNone, fmt.Sprintf("'%s' 메뉴를 찾을 수 없어요.", name))
	}

	qty := 1
	switch {
	case ent.MenuItemQuantity != nil && *ent.MenuItemQuantity > 0:
		qty = *ent.MenuItemQuantity
	case ent.Quantity != nil && *ent.Quantity > 0:
		qty = *ent.Quantity
	}

	extra, err := e.products.CreateAncillaryItem(ctx, model.AncillaryRequest{
		UserID:     tc.userID,
		MenuItemID: item.ID.String(),
		Quantity:   qty,
		Address:    tc.address,
	})
	if err != nil {
		logx.Warn().Err(err).Str("menu_item", item.Name).Msg("cannot create additional item product")
		extra = model.AncillaryItem{MenuItemID: item.ID.String()}
	}
	extra.Name = item.Name
	extra.Quantity = qty
	extra.UnitPrice = item.UnitPrice
	extra.TotalPrice = item.UnitPrice.Times(qty)

	tc.ancillary = slices.Concat(tc.ancillary, []model.AncillaryItem{extra})
	tc.update.AdditionalMenuItems = slices.Concat(tc.update.AdditionalMenuItems, []model.AncillaryItem{extra})
	return tc.respond(afterChange(tc), model.UIActionUpdateOrderList,
		fmt.Sprintf("%s %d개를 추가했어요. %s %s", item.Name, qty, totalSoFar(tc.total()), msgAskMore))
}

func (e *Engine) handleSetMemo(ctx context.Context, tc turnContext) turnContext {
	memo := strings.TrimSpace(tc.entities.SpecialRequest)
	if memo == "" {
		return tc.respond("", model.UIActionNone, msgAskMemo)
	}
	tc.note = memo
	tc.update.SpecialRequest = memo

	saved := fmt.Sprintf("요청사항을 저장했어요: %s", memo)
	if tc.readyToCheckout() {
		return tc.respond(model.StateReadyToCheckout, model.UIActionShowConfirmModal,
			saved+"\n"+orderSummary(tc)+"\n이대로 주문할까요?")
	}
	return tc.respond("", model.UIActionNone, saved+" "+e.promptForState(tc))
}
