package model

// AppState stores per-invocation state for the Eino Graph.
// It is registered via compose.WithGenLocalState and only touched inside
// state handlers or compose.ProcessState, which serialize access.
type AppState struct {
	Turn           TurnInput
	Interpretation *Interpretation // set by the interpreter post-handler
	ModelName      string

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}
