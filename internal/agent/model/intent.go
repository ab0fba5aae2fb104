package model

import "strings"

// Intent is the action the language service recognized in an utterance.
type Intent string

const (
	IntentOrderMenu         Intent = "ORDER_MENU"
	IntentSelectStyle       Intent = "SELECT_STYLE"
	IntentSetQuantity       Intent = "SET_QUANTITY"
	IntentSelectAddress     Intent = "SELECT_ADDRESS"
	IntentAddToCart         Intent = "ADD_TO_CART"
	IntentEditOrder         Intent = "EDIT_ORDER"
	IntentRemoveItem        Intent = "REMOVE_ITEM"
	IntentCancelOrder       Intent = "CANCEL_ORDER"
	IntentCustomizeMenu     Intent = "CUSTOMIZE_MENU"
	IntentAddAdditionalMenu Intent = "ADD_ADDITIONAL_MENU"
	IntentSetMemo           Intent = "SET_MEMO"
	IntentSkipCustomize     Intent = "SKIP_CUSTOMIZE"
	IntentConfirmOrder      Intent = "CONFIRM_ORDER"
	IntentConfirmYes        Intent = "CONFIRM_YES"
	IntentConfirmNo         Intent = "CONFIRM_NO"
	IntentAskMenuInfo       Intent = "ASK_MENU_INFO"
	IntentAskOrderStatus    Intent = "ASK_ORDER_STATUS"
	IntentGreeting          Intent = "GREETING"
	IntentUnknown           Intent = "UNKNOWN"
)

var knownIntents = map[Intent]struct{}{
	IntentOrderMenu: {}, IntentSelectStyle: {}, IntentSetQuantity: {}, IntentSelectAddress: {},
	IntentAddToCart: {}, IntentEditOrder: {}, IntentRemoveItem: {}, IntentCancelOrder: {},
	IntentCustomizeMenu: {}, IntentAddAdditionalMenu: {}, IntentSetMemo: {}, IntentSkipCustomize: {},
	IntentConfirmOrder: {}, IntentConfirmYes: {}, IntentConfirmNo: {}, IntentAskMenuInfo: {},
	IntentAskOrderStatus: {}, IntentGreeting: {}, IntentUnknown: {},
}

// ParseIntent maps a wire value onto the closed intent set.
// Empty input yields ASK_MENU_INFO, unrecognized input yields UNKNOWN.
func ParseIntent(s string) Intent {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "NULL" {
		return IntentAskMenuInfo
	}
	s = strings.ReplaceAll(s, " ", "_")
	if _, ok := knownIntents[Intent(s)]; ok {
		return Intent(s)
	}
	return IntentUnknown
}

// ImpliesOrdering reports whether the intent needs a delivery address before it can act.
func (i Intent) ImpliesOrdering() bool {
	switch i {
	case IntentOrderMenu, IntentSelectStyle, IntentSetQuantity, IntentAddAdditionalMenu:
		return true
	}
	return false
}

// ComponentAction is how a customization changes a component quantity.
type ComponentAction string

const (
	ComponentAdd    ComponentAction = "ADD"
	ComponentRemove ComponentAction = "REMOVE"
	ComponentSet    ComponentAction = "SET"
)

// ParseComponentAction normalizes the action entity. Unknown values are absent.
func ParseComponentAction(s string) ComponentAction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ADD", "INCREASE", "추가":
		return ComponentAdd
	case "REMOVE", "DECREASE", "DELETE", "빼기", "제거":
		return ComponentRemove
	case "SET", "CHANGE", "변경":
		return ComponentSet
	}
	return ""
}

// EntityBag holds the optional slots extracted from an utterance.
// Empty strings and nil pointers mean absent.
type EntityBag struct {
	MenuName         string          `json:"menuName,omitempty"`
	StyleName        string          `json:"styleName,omitempty"`
	Quantity         *int            `json:"quantity,omitempty"`
	AddressIndex     *int            `json:"addressIndex,omitempty"`
	MenuItemName     string          `json:"menuItemName,omitempty"`
	Action           ComponentAction `json:"action,omitempty"`
	MenuItemQuantity *int            `json:"menuItemQuantity,omitempty"`
	LineIndex        *int            `json:"lineIndex,omitempty"`
	SpecialRequest   string          `json:"specialRequest,omitempty"`
}

// Empty reports whether no slot was filled.
func (b EntityBag) Empty() bool {
	return b.MenuName == "" && b.StyleName == "" && b.Quantity == nil && b.AddressIndex == nil &&
		b.MenuItemName == "" && b.Action == "" && b.MenuItemQuantity == nil && b.LineIndex == nil &&
		b.SpecialRequest == ""
}

// Interpretation is the structured reading of one upstream reply.
type Interpretation struct {
	Intent   Intent    `json:"intent"`
	Entities EntityBag `json:"entities"`
	Message  string    `json:"message"`
	// Fallback is set when strict decoding failed and fields were recovered by pattern.
	Fallback        bool           `json:"fallback,omitempty"`
	ParsingMetadata map[string]any `json:"-"`
}

// IntPtr is a small helper for optional integer slots.
func IntPtr(v int) *int {
	return &v
}
