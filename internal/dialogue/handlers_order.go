package dialogue

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// maxUnitsPerRequest caps how many lines a single "N개" request may create.
const maxUnitsPerRequest = 10

// requireAddress defers the turn until a delivery address is chosen.
func (e *Engine) requireAddress(tc turnContext) turnContext {
	if len(tc.addresses) == 0 {
		return tc.respond(model.StateSelectingAddress, model.UIActionNone, msgNoAddresses)
	}
	return tc.respond(model.StateSelectingAddress, model.UIActionRequestAddress, chooseAddressMessage(tc.addresses))
}

func (e *Engine) handleOrderMenu(ctx context.Context, tc turnContext) turnContext {
	ent := tc.entities

	if styleless := cart.StylelessIndexes(tc.lines); len(styleless) > 0 {
		pending := tc.lines[styleless[0]].DinnerName
		if ent.MenuName != "" {
			if d, ok := e.catalog.ResolveDinner(ent.MenuName); ok && d.Name != pending {
				return tc.respond(model.StateSelectingStyle, model.UIActionNone,
					fmt.Sprintf("먼저 %s 스타일을 선택해주세요. (%s)", dinnerLabel(pending), e.catalog.AvailableStyleNames(pending)))
			}
		}
		if ent.StyleName != "" {
			return e.applyStyleToPending(ctx, tc, ent.StyleName, ent.Quantity)
		}
		return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.askStyleMessage(pending))
	}

	if i := firstZeroQuantity(tc.lines); i >= 0 {
		pending := tc.lines[i]
		if ent.MenuName != "" {
			if d, ok := e.catalog.ResolveDinner(ent.MenuName); ok && d.Name != pending.DinnerName {
				return tc.respond(model.StateSelectingQuantity, model.UIActionNone,
					fmt.Sprintf("먼저 %s 수량을 말씀해주세요.", lineLabel(pending)))
			}
		}
		if ent.Quantity != nil {
			return e.setLineQuantity(ctx, tc, i, *ent.Quantity)
		}
		return tc.respond(model.StateSelectingQuantity, model.UIActionNone, e.promptForState(tc))
	}

	if ent.MenuName == "" {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(""))
	}
	dinner, ok := e.catalog.ResolveDinner(ent.MenuName)
	if !ok {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone,
			e.askMenuMessage(fmt.Sprintf("'%s' 메뉴를 찾을 수 없어요.", ent.MenuName)))
	}

	n := 1
	if ent.Quantity != nil && *ent.Quantity > 0 {
		n = min(*ent.Quantity, maxUnitsPerRequest)
	}
	added := make([]model.OrderLine, n)
	for i := range added {
		added[i] = cart.AddPendingLine(dinner)
	}

	if ent.StyleName == "" {
		tc = tc.withLines(slices.Concat(tc.lines, added))
		tc.update.DinnersToAdd = slices.Concat(tc.update.DinnersToAdd, added)
		return tc.respond(model.StateSelectingStyle, model.UIActionUpdateOrderList, e.askStyleMessage(dinner.Name))
	}

	style, ok := e.catalog.ResolveStyle(ent.StyleName)
	if !ok || !e.catalog.IsStyleCompatible(dinner.Name, style.Name) {
		tc = tc.withLines(slices.Concat(tc.lines, added))
		tc.update.DinnersToAdd = slices.Concat(tc.update.DinnersToAdd, added)
		return tc.respond(model.StateSelectingStyle, model.UIActionUpdateOrderList,
			fmt.Sprintf("%s %d개를 담았어요. %s 중에서 스타일을 선택해주세요.", dinnerLabel(dinner.Name), n, e.styleRejection(dinner.Name, ent.StyleName, ok)))
	}

	start := len(tc.lines)
	for i := range added {
		line := cart.ApplyStyle(added[i], style)
		if q, err := cart.SetQuantity(line, 1); err == nil {
			line = q
		}
		added[i] = line
	}
	tc = tc.withLines(slices.Concat(tc.lines, added))
	idxs := indexRange(start, len(tc.lines))
	tc = e.backLines(ctx, tc, idxs)
	tc.update.DinnersToAdd = slices.Concat(tc.update.DinnersToAdd, tc.lines[start:])

	return tc.respond(model.StateAskingMore, model.UIActionUpdateOrderList,
		fmt.Sprintf("%s %s 스타일 %d개를 담았어요. %s %s", dinnerLabel(dinner.Name), styleLabel(style.Name), n, totalSoFar(tc.total()), msgAskMore))
}

// applyStyleToPending completes every style-less line at once. A single
// pending line takes the supplied quantity, a batch gets one unit per line.
func (e *Engine) applyStyleToPending(ctx context.Context, tc turnContext, styleName string, qty *int) turnContext {
	idxs := cart.StylelessIndexes(tc.lines)
	dinnerName := tc.lines[idxs[0]].DinnerName

	style, ok := e.catalog.ResolveStyle(styleName)
	if !ok {
		return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.styleRejection(dinnerName, styleName, false))
	}
	for _, i := range idxs {
		if !e.catalog.IsStyleCompatible(tc.lines[i].DinnerName, style.Name) {
			return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.styleRejection(tc.lines[i].DinnerName, styleName, true))
		}
	}

	n := 1
	if len(idxs) == 1 && qty != nil && *qty > 0 {
		n = *qty
	}
	lines := slices.Clone(tc.lines)
	for _, i := range idxs {
		line := cart.ApplyStyle(lines[i], style)
		if q, err := cart.SetQuantity(line, n); err == nil {
			line = q
		}
		lines[i] = line
	}
	tc = e.backLines(ctx, tc.withLines(lines), idxs)

	sets := make([]model.StyleSet, 0, len(idxs))
	for _, i := range idxs {
		sets = append(sets, model.StyleSet{
			LineIndex:        i,
			ServingStyleID:   style.ID.String(),
			ServingStyleName: style.Name,
			Line:             tc.lines[i],
		})
	}
	tc.update.StylesToSet = slices.Concat(tc.update.StylesToSet, sets)

	return tc.respond(model.StateAskingMore, model.UIActionUpdateOrderList,
		fmt.Sprintf("%s %s 스타일로 %d개 담았어요. %s %s", dinnerLabel(dinnerName), styleLabel(style.Name), len(idxs)*n, totalSoFar(tc.total()), msgAskMore))
}

// backLines creates backing product records for complete lines that lack one.
// A failed write leaves the line unbacked; checkout retries it.
func (e *Engine) backLines(ctx context.Context, tc turnContext, idxs []int) turnContext {
	if tc.address == "" {
		return tc
	}
	lines := slices.Clone(tc.lines)
	for _, i := range idxs {
		line := lines[i]
		if !line.IsComplete() || line.IsCatalogBacked() {
			continue
		}
		rec, err := e.products.CreateCatalogBackedLine(ctx, model.LineRecordRequest{
			UserID:         tc.userID,
			DinnerID:       line.DinnerID,
			ServingStyleID: line.ServingStyleID,
			Quantity:       line.Quantity,
			Address:        tc.address,
		})
		if err != nil {
			logx.Warn().Err(err).Str("user_id", tc.userID).Str("dinner", line.DinnerName).Msg("cannot create catalog-backed line")
			continue
		}
		lines[i] = cart.AttachRecord(line, rec)
	}
	return tc.withLines(lines)
}

func (e *Engine) handleSelectStyle(ctx context.Context, tc turnContext) turnContext {
	ent := tc.entities
	styleless := cart.StylelessIndexes(tc.lines)

	switch {
	case ent.StyleName == "" && len(styleless) > 0:
		return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.askStyleMessage(tc.lines[styleless[0]].DinnerName))
	case ent.StyleName == "" && len(tc.lines) == 0:
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(""))
	case ent.StyleName == "":
		last := tc.lines[len(tc.lines)-1]
		return tc.respond("", model.UIActionNone,
			fmt.Sprintf("어떤 스타일로 변경할까요? (%s)", e.catalog.AvailableStyleNames(last.DinnerName)))
	case len(styleless) > 0:
		return e.applyStyleToPending(ctx, tc, ent.StyleName, ent.Quantity)
	case len(tc.lines) == 0:
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage("먼저 메뉴를 선택해주세요."))
	}
	tc, _ = e.changeStyle(ctx, tc, len(tc.lines)-1, ent.StyleName)
	return tc
}

// changeStyle replaces the style of a complete line. A backed line is re-backed
// because its product was priced for the old style.
func (e *Engine) changeStyle(ctx context.Context, tc turnContext, i int, styleName string) (turnContext, bool) {
	line := tc.lines[i]
	style, ok := e.catalog.ResolveStyle(styleName)
	if !ok || !e.catalog.IsStyleCompatible(line.DinnerName, style.Name) {
		return tc.respond("", model.UIActionNone, e.styleRejection(line.DinnerName, styleName, ok)), false
	}

	next := cart.ApplyStyle(line, style)
	if line.IsCatalogBacked() {
		next = cart.DetachRecord(next)
	}
	tc = e.backLines(ctx, tc.withLines(cart.Replace(tc.lines, i, next)), []int{i})
	tc.update.StylesToSet = slices.Concat(tc.update.StylesToSet, []model.StyleSet{{
		LineIndex:        i,
		ServingStyleID:   style.ID.String(),
		ServingStyleName: style.Name,
		Line:             tc.lines[i],
	}})
	return tc.respond("", model.UIActionUpdateOrderList,
		fmt.Sprintf("%s을(를) %s 스타일로 변경했어요. %s", dinnerLabel(line.DinnerName), styleLabel(style.Name), totalSoFar(tc.total()))), true
}

func (e *Engine) styleRejection(dinnerName, styleName string, known bool) string {
	available := e.catalog.AvailableStyleNames(dinnerName)
	if !known {
		return fmt.Sprintf("'%s' 스타일을 찾을 수 없어요. %s에 가능한 스타일: %s", styleName, dinnerLabel(dinnerName), available)
	}
	return fmt.Sprintf("%s에는 %s 스타일을 선택할 수 없어요. 가능한 스타일: %s", dinnerLabel(dinnerName), styleLabel(styleName), available)
}

func (e *Engine) handleSetQuantity(ctx context.Context, tc turnContext) turnContext {
	qty := tc.entities.Quantity
	if qty == nil || *qty < 1 {
		return tc.respond("", model.UIActionNone, "몇 개 주문하시겠어요?")
	}
	if styleless := cart.StylelessIndexes(tc.lines); len(styleless) > 0 {
		pending := tc.lines[styleless[0]].DinnerName
		return tc.respond(model.StateSelectingStyle, model.UIActionNone,
			fmt.Sprintf("먼저 스타일을 선택해주세요. (%s)", e.catalog.AvailableStyleNames(pending)))
	}
	if i := firstZeroQuantity(tc.lines); i >= 0 {
		return e.setLineQuantity(ctx, tc, i, *qty)
	}
	if len(tc.lines) == 0 {
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage("먼저 메뉴를 선택해주세요."))
	}
	return e.setLineQuantity(ctx, tc, len(tc.lines)-1, *qty)
}

// setLineQuantity updates one line and writes the change through to its product.
func (e *Engine) setLineQuantity(ctx context.Context, tc turnContext, i int, qty int) turnContext {
	line, err := cart.SetQuantity(tc.lines[i], qty)
	switch {
	case errors.Is(err, errx.ErrStyleRequired):
		return tc.respond(model.StateSelectingStyle, model.UIActionNone, e.askStyleMessage(tc.lines[i].DinnerName))
	case err != nil:
		return tc.respond("", model.UIActionNone, "수량은 1개 이상으로 말씀해주세요.")
	}

	tc = tc.withLines(cart.Replace(tc.lines, i, line))
	if line.IsCatalogBacked() {
		if err := e.products.UpdateLineQuantity(ctx, line.ProductID, qty); err != nil {
			logx.Warn().Err(err).Str("product_id", line.ProductID).Msg("cannot update line quantity")
		}
	} else {
		tc = e.backLines(ctx, tc, []int{i})
	}
	return tc.respond(model.StateAskingMore, model.UIActionUpdateOrderList,
		fmt.Sprintf("%s %s 스타일 %d개로 변경했어요. %s", dinnerLabel(line.DinnerName), styleLabel(line.ServingStyleName), qty, totalSoFar(tc.total())))
}

func (e *Engine) handleSelectAddress(ctx context.Context, tc turnContext) turnContext {
	if len(tc.addresses) == 0 {
		return tc.respond(model.StateSelectingAddress, model.UIActionNone, msgNoAddresses)
	}
	idx := tc.entities.AddressIndex
	if idx == nil || *idx < 1 || *idx > len(tc.addresses) {
		return tc.respond(model.StateSelectingAddress, model.UIActionRequestAddress,
			"주소 번호를 다시 말씀해주세요. "+addressListing(tc.addresses))
	}

	address := tc.addresses[*idx-1]
	tc.address = address
	tc.update.SelectedAddress = address
	tc = e.backLines(ctx, tc, indexRange(0, len(tc.lines)))

	confirmed := fmt.Sprintf("배달 주소를 %s(으)로 설정했어요.", address)
	switch {
	case tc.readyToCheckout():
		return tc.respond(model.StateReadyToCheckout, model.UIActionShowConfirmModal,
			confirmed+"\n"+orderSummary(tc)+"\n이대로 주문할까요?")
	case len(tc.lines) == 0:
		return tc.respond(model.StateSelectingMenu, model.UIActionNone, e.askMenuMessage(confirmed))
	}
	return tc.respond("", model.UIActionNone, confirmed+" "+e.promptForState(tc))
}

func firstZeroQuantity(lines []model.OrderLine) int {
	return slices.IndexFunc(lines, func(l model.OrderLine) bool {
		return l.HasStyle() && l.Quantity <= 0
	})
}

func indexRange(from, to int) []int {
	out := make([]int, 0, max(to-from, 0))
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
