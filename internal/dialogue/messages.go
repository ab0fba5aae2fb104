package dialogue

import (
	"fmt"
	"strings"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/catalog"
)

const (
	msgGreeting        = "안녕하세요! 미스터 대박 디너 주문을 도와드릴게요. 어떤 디너를 주문하시겠어요?"
	msgAskMore         = "추가로 주문하실 메뉴가 있으신가요? 없으시면 '주문할게요'라고 말씀해주세요."
	msgCheckoutFailed  = "죄송합니다. 주문 처리 중 문제가 발생했어요. 잠시 후 다시 시도해주세요."
	msgNoAddresses     = "등록된 배달 주소가 없어요. 마이페이지에서 배달 주소를 먼저 등록해주세요."
	msgCancelled       = "주문이 취소되었어요. 새로 주문하시려면 말씀해주세요."
	msgEmptyCart       = "장바구니가 비어 있어요."
	msgNothingToChange = "변경할 메뉴가 없어요."
	msgAskMemo         = "요청사항을 말씀해주세요."
	msgAskComponent    = "어떤 구성품을 변경할까요?"
)

func dinnerLabel(name string) string {
	return catalog.DisplayDinnerName(name)
}

func styleLabel(name string) string {
	return catalog.DisplayStyleName(name)
}

// menuListing renders the active dinners with prices.
func (e *Engine) menuListing() string {
	snap, err := e.catalog.Snapshot()
	if err != nil {
		return ""
	}
	var parts []string
	for _, d := range snap.Dinners {
		if d.Active {
			parts = append(parts, fmt.Sprintf("%s(%s)", dinnerLabel(d.Name), d.BasePrice))
		}
	}
	return strings.Join(parts, ", ")
}

func (e *Engine) askMenuMessage(prefix string) string {
	msg := "어떤 디너를 주문하시겠어요?"
	if listing := e.menuListing(); listing != "" {
		msg += " 주문 가능한 메뉴: " + listing
	}
	if prefix != "" {
		return prefix + " " + msg
	}
	return msg
}

func addressListing(addresses []string) string {
	var b strings.Builder
	for i, a := range addresses {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, a)
	}
	return b.String()
}

func chooseAddressMessage(addresses []string) string {
	return "먼저 배달 주소를 선택해주세요! " + addressListing(addresses)
}

func (e *Engine) askStyleMessage(dinnerName string) string {
	return fmt.Sprintf("%s 스타일을 선택해주세요. (%s)", dinnerLabel(dinnerName), e.catalog.AvailableStyleNames(dinnerName))
}

func totalSoFar(total model.Money) string {
	return fmt.Sprintf("현재까지 총 %s이에요.", total)
}

// orderSummary lists lines, customizations, extras and the total.
func orderSummary(tc turnContext) string {
	var b strings.Builder
	for i, l := range tc.lines {
		style := styleLabel(l.ServingStyleName)
		if style == "" {
			style = "스타일 미선택"
		}
		fmt.Fprintf(&b, "%d. %s %s %d개 %s", i+1, dinnerLabel(l.DinnerName), style, l.Quantity, l.TotalPrice)
		var changes []string
		for _, c := range l.Components {
			if c.Quantity != c.DefaultQuantity {
				changes = append(changes, fmt.Sprintf("%s %d개", c.Name, c.Quantity))
			}
		}
		if len(changes) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(changes, ", "))
		}
		b.WriteString("\n")
	}
	for _, a := range tc.ancillary {
		fmt.Fprintf(&b, "- %s %d개 %s\n", a.Name, a.Quantity, a.TotalPrice)
	}
	if tc.address != "" {
		fmt.Fprintf(&b, "배달 주소: %s\n", tc.address)
	}
	if tc.note != "" {
		fmt.Fprintf(&b, "요청사항: %s\n", tc.note)
	}
	fmt.Fprintf(&b, "총 %s", tc.total())
	return b.String()
}

// promptForState re-asks whatever the derived state is waiting on.
func (e *Engine) promptForState(tc turnContext) string {
	switch state := tc.derivedState(); state {
	case model.StateSelectingAddress:
		if len(tc.addresses) == 0 {
			return msgNoAddresses
		}
		return chooseAddressMessage(tc.addresses)
	case model.StateSelectingStyle:
		for _, l := range tc.lines {
			if !l.HasStyle() {
				return e.askStyleMessage(l.DinnerName)
			}
		}
	case model.StateSelectingQuantity:
		for _, l := range tc.lines {
			if l.Quantity <= 0 {
				return fmt.Sprintf("%s %s 스타일을 몇 개 주문하시겠어요?", dinnerLabel(l.DinnerName), styleLabel(l.ServingStyleName))
			}
		}
	case model.StateAskingMore:
		return msgAskMore
	}
	return e.askMenuMessage("")
}
