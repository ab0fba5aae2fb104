package model

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"

	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "52,000원", Money(52000).String())
	assert.Equal(t, "0원", Money(0).String())
	assert.Equal(t, Money(9000), Money(3000).Times(3))
}

func TestParseIntent(t *testing.T) {
	assert.Equal(t, IntentOrderMenu, ParseIntent(" order_menu "))
	assert.Equal(t, IntentSelectStyle, ParseIntent("select style"))
	assert.Equal(t, IntentAskMenuInfo, ParseIntent(""))
	assert.Equal(t, IntentAskMenuInfo, ParseIntent("null"))
	assert.Equal(t, IntentUnknown, ParseIntent("ORDER_PIZZA"))
}

func TestParseComponentAction(t *testing.T) {
	assert.Equal(t, ComponentAdd, ParseComponentAction("add"))
	assert.Equal(t, ComponentRemove, ParseComponentAction("REMOVE"))
	assert.Equal(t, ComponentSet, ParseComponentAction("set"))
	assert.Equal(t, ComponentAction(""), ParseComponentAction("maybe"))
}

func TestOrderLinePending(t *testing.T) {
	line := OrderLine{DinnerName: "Valentine Dinner"}
	assert.True(t, line.IsPending())

	line.ServingStyleName = "Simple Style"
	assert.True(t, line.IsPending(), "quantity 0 is still pending")

	line.Quantity = 1
	assert.True(t, line.IsComplete())
	assert.False(t, line.IsCatalogBacked())
}

func TestComponentDelta(t *testing.T) {
	c := ComponentCustomization{DefaultQuantity: 1, Quantity: 0, UnitPrice: 15000}
	assert.Equal(t, Money(-15000), c.Delta())
	c.Quantity = 3
	assert.Equal(t, Money(30000), c.Delta())
}

func TestCheckoutRequestValidate(t *testing.T) {
	ok := CheckoutRequest{
		Address: "서울시 강남구",
		Lines: []OrderLine{{DinnerID: "d", ServingStyleID: "s", Quantity: 1, TotalPrice: 1000}},
		Ancillary: []AncillaryItem{{MenuItemID: "m", Quantity: 2, TotalPrice: 500}},
	}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, Money(1500), ok.Total())

	missingStyle := ok
	missingStyle.Lines = append([]OrderLine{}, ok.Lines...)
	missingStyle.Lines = append(missingStyle.Lines, OrderLine{DinnerID: "d", Quantity: 1})
	assert.True(t, errors.Is(missingStyle.Validate(), errx.ErrIncompleteLine))

	noAddress := ok
	noAddress.Address = ""
	assert.ErrorIs(t, noAddress.Validate(), errx.ErrAddressRequired)

	assert.ErrorIs(t, CheckoutRequest{Address: "x"}.Validate(), errx.ErrEmptyCart)
}

func TestResolvePricing(t *testing.T) {
	assert.Equal(t, defaultPricing["gemini-2.5-flash"], ResolvePricing("gemini-2.5-flash"))
	assert.Equal(t, defaultPricing["gemini-2.5-flash-lite"], ResolvePricing("gemini-2.5-flash-lite-preview"))
	assert.Equal(t, Pricing{}, ResolvePricing("unknown"))

	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 1_000_000}, Pricing{InputPerM: 1, OutputPerM: 2})
	assert.InDelta(t, 1.0, in, 1e-9)
	assert.InDelta(t, 2.0, out, 1e-9)
	assert.InDelta(t, 3.0, total, 1e-9)
}
