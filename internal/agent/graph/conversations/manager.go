package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/mrdaeback/voice-order/internal/agent/model"
)

const defaultMaxTurns = 4

// MessagesManager assembles the upstream chat context from caller-held history.
// Nothing is stored server side between turns.
type MessagesManager struct {
	maxTurns int
}

func NewMessagesManager(config model.ConversationConfig) *MessagesManager {
	maxTurns := config.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &MessagesManager{maxTurns: maxTurns}
}

// BuildOrderContext returns system prompt, the most recent history and the new utterance.
func (cm *MessagesManager) BuildOrderContext(systemPrompt string, history []model.HistoryMessage, utterance string) []*schema.Message {
	msgs := toSchemaMessages(history)

	// clients sometimes append the current utterance to history before sending
	if n := len(msgs); n > 0 && msgs[n-1].Role == schema.User && msgs[n-1].Content == strings.TrimSpace(utterance) {
		msgs = msgs[:n-1]
	}

	recent := trimTail(msgs, cm.maxTurns)
	out := make([]*schema.Message, 0, len(recent)+2)
	out = append(out, schema.SystemMessage(systemPrompt))
	out = append(out, recent...)
	out = append(out, schema.UserMessage(strings.TrimSpace(utterance)))
	return out
}

func toSchemaMessages(history []model.HistoryMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, h := range history {
		content := strings.TrimSpace(h.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(h.Role)) {
		case "user", "customer":
			out = append(out, schema.UserMessage(content))
		case "assistant", "model", "bot":
			out = append(out, schema.AssistantMessage(content, nil))
		}
	}
	return out
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
