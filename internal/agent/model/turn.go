package model

// HistoryMessage is one prior exchange supplied by the caller.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnInput is the caller-held state plus the new utterance for one turn.
type TurnInput struct {
	UserID          string           `json:"userId"`
	Message         string           `json:"message,omitempty"`
	AudioBase64     string           `json:"audioBase64,omitempty"`
	AudioFormat     string           `json:"audioFormat,omitempty"`
	History         []HistoryMessage `json:"conversationHistory,omitempty"`
	Lines           []OrderLine      `json:"currentOrder,omitempty"`
	Ancillary       []AncillaryItem  `json:"additionalMenuItems,omitempty"`
	SelectedAddress string           `json:"selectedAddress,omitempty"`
	Addresses       []string         `json:"-"`
	SpecialRequest  string           `json:"specialRequest,omitempty"`
}

// TurnResult is the authoritative next version of the caller-held state.
type TurnResult struct {
	UserMessage      string          `json:"userMessage"`
	AssistantMessage string          `json:"assistantMessage"`
	FlowState        FlowState       `json:"flowState"`
	UIAction         UIAction        `json:"uiAction"`
	Lines            []OrderLine     `json:"currentOrder"`
	TotalPrice       Money           `json:"totalPrice"`
	SelectedAddress  string          `json:"selectedAddress,omitempty"`
	Addresses        []string        `json:"userAddresses"`
	StoreUpdate      *StoreUpdate    `json:"storeUpdate,omitempty"`
	Ancillary        []AncillaryItem `json:"additionalMenuItems"`
	SpecialRequest   string          `json:"specialRequest,omitempty"`
	OrderID          string          `json:"orderId,omitempty"`
	OrderNumber      string          `json:"orderNumber,omitempty"`
}
