package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrdaeback/voice-order/internal/agent/model"
)

func TestDeriveState(t *testing.T) {
	styled := model.OrderLine{DinnerName: "Valentine Dinner", ServingStyleName: "Simple Style", Quantity: 1}
	styleless := model.OrderLine{DinnerName: "Valentine Dinner"}
	noQuantity := model.OrderLine{DinnerName: "Valentine Dinner", ServingStyleName: "Simple Style"}

	tests := []struct {
		name    string
		lines   []model.OrderLine
		address string
		want    model.FlowState
	}{
		{"empty", nil, "", model.StateIdle},
		{"address only", nil, "서울", model.StateSelectingMenu},
		{"style missing", []model.OrderLine{styled, styleless}, "서울", model.StateSelectingStyle},
		{"quantity missing", []model.OrderLine{noQuantity}, "서울", model.StateSelectingQuantity},
		{"complete without address", []model.OrderLine{styled}, "", model.StateSelectingAddress},
		{"complete", []model.OrderLine{styled}, "서울", model.StateAskingMore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveState(tt.lines, tt.address))
		})
	}
}

func TestParseOrdinal(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"두 번째 디너 스테이크 빼줘", 2, true},
		{"첫번째 거", 1, true},
		{"3번 디너에 와인 추가", 3, true},
		{"스테이크 두 개 추가", 0, false},
		{"와인 2번 더", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := parseOrdinal(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, n)
		})
	}
}
