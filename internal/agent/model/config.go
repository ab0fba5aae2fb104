package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	// MaxTurns is how many history messages are sent upstream.
	MaxTurns    int           `envconfig:"CONVERSATION_MAX_TURNS" default:"4"`
	TurnTimeout time.Duration `envconfig:"TURN_TIMEOUT" default:"45s"`
}

type OrderModelConfig struct {
	Model          string  `envconfig:"ORDER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"ORDER_MAX_TOKENS" default:"1024"`
	Temperature    float32 `envconfig:"ORDER_TEMPERATURE" default:"0.2"`
	ThinkingBudget int32   `envconfig:"ORDER_THINKING_BUDGET" default:"0"`
}

type TranscriptionConfig struct {
	Model    string `envconfig:"STT_MODEL" default:"gemini-2.5-flash"`
	Language string `envconfig:"STT_LANGUAGE" default:"ko-KR"`
}

type OrderPromptConfig struct {
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"Mr. DaeBak"`
}
