package model

// FlowState is the conversation's step in the ordering sequence.
type FlowState string

const (
	StateIdle              FlowState = "IDLE"
	StateSelectingAddress  FlowState = "SELECTING_ADDRESS"
	StateSelectingMenu     FlowState = "SELECTING_MENU"
	StateSelectingStyle    FlowState = "SELECTING_STYLE"
	StateSelectingQuantity FlowState = "SELECTING_QUANTITY"
	StateAskingMore        FlowState = "ASKING_MORE"
	StateCustomizing       FlowState = "CUSTOMIZING"
	StateReadyToCheckout   FlowState = "READY_TO_CHECKOUT"
	StateCompleted         FlowState = "COMPLETED"
)

// UIAction tells the client which UI affordance to show next.
type UIAction string

const (
	UIActionNone              UIAction = "NONE"
	UIActionShowConfirmModal  UIAction = "SHOW_CONFIRM_MODAL"
	UIActionShowCancelConfirm UIAction = "SHOW_CANCEL_CONFIRM"
	UIActionUpdateOrderList   UIAction = "UPDATE_ORDER_LIST"
	UIActionRequestAddress    UIAction = "REQUEST_ADDRESS"
	UIActionRequestPayment    UIAction = "REQUEST_PAYMENT"
	UIActionOrderCompleted    UIAction = "ORDER_COMPLETED"
)

// StyleSet records a style applied to a line, with the backing product snapshot when one exists.
type StyleSet struct {
	LineIndex        int       `json:"lineIndex"`
	ServingStyleID   string    `json:"servingStyleId"`
	ServingStyleName string    `json:"servingStyleName"`
	Line             OrderLine `json:"line"`
}

// ComponentUpdate records a component quantity change on a line.
type ComponentUpdate struct {
	LineIndex  int    `json:"lineIndex"`
	ProductID  string `json:"productId,omitempty"`
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
}

// StoreUpdate describes exactly what the client must apply to its local state.
type StoreUpdate struct {
	SelectedAddress     string            `json:"selectedAddress,omitempty"`
	DinnersToAdd        []OrderLine       `json:"dinnersToAdd,omitempty"`
	StylesToSet         []StyleSet        `json:"stylesToSet,omitempty"`
	MenuItemUpdates     []ComponentUpdate `json:"menuItemUpdates,omitempty"`
	RemovedLineIndexes  []int             `json:"removedLineIndexes,omitempty"`
	AdditionalMenuItems []AncillaryItem   `json:"additionalMenuItems,omitempty"`
	SpecialRequest      string            `json:"specialRequest,omitempty"`
	ClearCart           bool              `json:"clearCart,omitempty"`
}

// Empty reports whether the update carries no instruction.
func (u StoreUpdate) Empty() bool {
	return u.SelectedAddress == "" && len(u.DinnersToAdd) == 0 && len(u.StylesToSet) == 0 &&
		len(u.MenuItemUpdates) == 0 && len(u.RemovedLineIndexes) == 0 &&
		len(u.AdditionalMenuItems) == 0 && u.SpecialRequest == "" && !u.ClearCart
}
