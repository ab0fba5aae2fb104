package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaeback/voice-order/internal/agent/model"
)

type scriptedRunner struct {
	inputs  []model.TurnInput
	results []*model.TurnResult
}

func (r *scriptedRunner) Invoke(_ context.Context, in model.TurnInput) (*model.TurnResult, error) {
	r.inputs = append(r.inputs, in)
	res := r.results[0]
	r.results = r.results[1:]
	return res, nil
}

func TestChatSessionCarriesState(t *testing.T) {
	line := model.OrderLine{DinnerName: "Valentine Dinner", ServingStyleName: "Simple Style", Quantity: 1, TotalPrice: 45000}
	runner := &scriptedRunner{results: []*model.TurnResult{
		{UserMessage: "발렌타인 심플", AssistantMessage: "담았어요.", FlowState: model.StateAskingMore,
			Lines: []model.OrderLine{line}, SelectedAddress: "서울시 강남구", TotalPrice: 45000},
		{UserMessage: "주문할게요", AssistantMessage: "주문이 완료되었어요!", FlowState: model.StateCompleted, OrderNumber: "ORD-1A2B3C4D"},
	}}
	s := &chatSession{runner: runner, state: model.TurnInput{UserID: "u1", Addresses: []string{"서울시 강남구"}}}

	var out bytes.Buffer
	err := s.run(context.Background(), strings.NewReader("발렌타인 심플\n\n주문할게요\nexit\n"), &out)
	require.NoError(t, err)

	require.Len(t, runner.inputs, 2)
	second := runner.inputs[1]
	assert.Equal(t, "주문할게요", second.Message)
	assert.Equal(t, []model.OrderLine{line}, second.Lines)
	assert.Equal(t, "서울시 강남구", second.SelectedAddress)
	assert.Len(t, second.History, 2)
	assert.Contains(t, out.String(), "45,000원")
	assert.Contains(t, out.String(), "ORD-1A2B3C4D")
}
