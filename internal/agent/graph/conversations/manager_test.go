package conversations

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaeback/voice-order/internal/agent/model"
)

func TestBuildOrderContextTrimsHistory(t *testing.T) {
	mm := NewMessagesManager(model.ConversationConfig{MaxTurns: 2})
	history := []model.HistoryMessage{
		{Role: "user", Content: "안녕하세요"},
		{Role: "assistant", Content: "어서오세요"},
		{Role: "user", Content: "발렌타인 디너"},
		{Role: "system", Content: "ignored"},
		{Role: "assistant", Content: "스타일을 선택해주세요"},
		{Role: "user", Content: "   "},
	}

	msgs := mm.BuildOrderContext("SYS", history, " 심플로 ")

	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "발렌타인 디너", msgs[1].Content)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "심플로", msgs[3].Content)
}

func TestBuildOrderContextDropsEchoedUtterance(t *testing.T) {
	mm := NewMessagesManager(model.ConversationConfig{})
	history := []model.HistoryMessage{{Role: "user", Content: "주문할게요"}}

	msgs := mm.BuildOrderContext("SYS", history, "주문할게요")

	require.Len(t, msgs, 2)
	assert.Equal(t, schema.User, msgs[1].Role)
}

func TestTrimTailCopies(t *testing.T) {
	in := []*schema.Message{schema.UserMessage("a"), schema.UserMessage("b"), schema.UserMessage("c")}
	out := trimTail(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Content)

	out[0] = nil
	assert.NotNil(t, in[1])
	assert.Len(t, trimTail(in, 10), 3)
}
