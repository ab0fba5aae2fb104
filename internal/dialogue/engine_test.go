package dialogue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/cart"
	"github.com/mrdaeback/voice-order/internal/catalog"
)

var (
	valentineID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	frenchID    = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	feastID     = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	simpleID    = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	grandID     = uuid.MustParse("00000000-0000-0000-0000-000000000012")
	deluxeID    = uuid.MustParse("00000000-0000-0000-0000-000000000013")
	steakID     = uuid.MustParse("00000000-0000-0000-0000-000000000021")
	wineID      = uuid.MustParse("00000000-0000-0000-0000-000000000022")
	baguetteID  = uuid.MustParse("00000000-0000-0000-0000-000000000023")
	saladID     = uuid.MustParse("00000000-0000-0000-0000-000000000024")
)

const (
	valentinePrice model.Money = 45000
	steakPrice     model.Money = 15000
	winePrice      model.Money = 8000
	grandExtra     model.Money = 5000
)

var testAddresses = []string{"서울시 강남구 테헤란로 1", "서울시 마포구 월드컵로 2"}

type staticSource struct {
	snap model.CatalogSnapshot
}

func (s staticSource) ListActiveDinners(context.Context) ([]model.Dinner, error) {
	return s.snap.Dinners, nil
}

func (s staticSource) ListActiveStyles(context.Context) ([]model.ServingStyle, error) {
	return s.snap.Styles, nil
}

func (s staticSource) ListMenuItems(context.Context) ([]model.MenuItem, error) {
	return s.snap.MenuItems, nil
}

func testCatalog(t *testing.T) *catalog.Resolver {
	t.Helper()
	r := catalog.NewResolver(staticSource{snap: model.CatalogSnapshot{
		Dinners: []model.Dinner{
			{ID: valentineID, Name: "Valentine Dinner", BasePrice: valentinePrice, Active: true},
			{ID: frenchID, Name: "French Dinner", BasePrice: 52000, Active: true},
			{ID: feastID, Name: "Champagne Feast Dinner", BasePrice: 120000, Active: true},
		},
		Styles: []model.ServingStyle{
			{ID: simpleID, Name: "Simple Style", ExtraPrice: 0, Active: true},
			{ID: grandID, Name: "Grand Style", ExtraPrice: grandExtra, Active: true},
			{ID: deluxeID, Name: "Deluxe Style", ExtraPrice: 10000, Active: true},
		},
		MenuItems: []model.MenuItem{
			{ID: steakID, Name: "Steak", UnitPrice: steakPrice},
			{ID: wineID, Name: "Wine", UnitPrice: winePrice},
			{ID: baguetteID, Name: "Baguette Bread", UnitPrice: 3000},
			{ID: saladID, Name: "Salad", UnitPrice: 6000},
		},
	}})
	require.NoError(t, r.Warm(context.Background()))
	return r
}

type componentWrite struct {
	productID  string
	menuItemID string
	quantity   int
}

type fakeProducts struct {
	mu              sync.Mutex
	created         []model.LineRecordRequest
	ancillary       []model.AncillaryRequest
	componentWrites []componentWrite
	quantityWrites  map[string]int
	failCreate      bool
}

func defaultComponents() []model.ComponentCustomization {
	return []model.ComponentCustomization{
		{MenuItemID: steakID.String(), Name: "Steak", DefaultQuantity: 1, Quantity: 1, UnitPrice: steakPrice},
		{MenuItemID: wineID.String(), Name: "Wine", DefaultQuantity: 1, Quantity: 1, UnitPrice: winePrice},
	}
}

func (f *fakeProducts) CreateCatalogBackedLine(_ context.Context, req model.LineRecordRequest) (model.LineRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return model.LineRecord{}, errors.New("db down")
	}
	f.created = append(f.created, req)
	return model.LineRecord{
		ProductID:  fmt.Sprintf("product-%d", len(f.created)),
		Components: defaultComponents(),
	}, nil
}

func (f *fakeProducts) CreateAncillaryItem(_ context.Context, req model.AncillaryRequest) (model.AncillaryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ancillary = append(f.ancillary, req)
	return model.AncillaryItem{ProductID: fmt.Sprintf("extra-%d", len(f.ancillary)), MenuItemID: req.MenuItemID}, nil
}

func (f *fakeProducts) UpdateLineComponentQuantity(_ context.Context, productID, menuItemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.componentWrites = append(f.componentWrites, componentWrite{productID, menuItemID, quantity})
	return nil
}

func (f *fakeProducts) UpdateLineQuantity(_ context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quantityWrites == nil {
		f.quantityWrites = map[string]int{}
	}
	f.quantityWrites[productID] = quantity
	return nil
}

func (f *fakeProducts) LineComponents(context.Context, string) ([]model.ComponentCustomization, error) {
	return defaultComponents(), nil
}

type fakeOrders struct {
	requests []model.CheckoutRequest
	err      error
}

func (f *fakeOrders) PlaceOrder(_ context.Context, req model.CheckoutRequest) (model.PlacedOrder, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return model.PlacedOrder{}, f.err
	}
	return model.PlacedOrder{
		OrderID:     "order-1",
		OrderNumber: "ORD-ABCD1234",
		UserID:      req.UserID,
		Address:     req.Address,
		Total:       req.Total(),
		Currency:    "KRW",
		LineCount:   len(req.Lines) + len(req.Ancillary),
		PlacedAt:    time.Now(),
	}, nil
}

type fakeEvents struct {
	placed []model.PlacedOrder
}

func (f *fakeEvents) OrderPlaced(_ context.Context, o model.PlacedOrder) error {
	f.placed = append(f.placed, o)
	return errors.New("broker unavailable")
}

type harness struct {
	engine   *Engine
	products *fakeProducts
	orders   *fakeOrders
	events   *fakeEvents
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{products: &fakeProducts{}, orders: &fakeOrders{}, events: &fakeEvents{}}
	h.engine = NewEngine(testCatalog(t), h.products, h.orders, WithOrderEvents(h.events))
	return h
}

func (h *harness) turn(in model.TurnInput, intent model.Intent, ent model.EntityBag) model.TurnResult {
	in.UserID = "user-1"
	in.Addresses = testAddresses
	return h.engine.Process(context.Background(), in, model.Interpretation{Intent: intent, Entities: ent})
}

func addressed(lines []model.OrderLine) model.TurnInput {
	return model.TurnInput{SelectedAddress: testAddresses[0], Lines: lines}
}

func assertPriceInvariant(t *testing.T, lines []model.OrderLine) {
	t.Helper()
	for i, l := range lines {
		assert.Equal(t, l.UnitPrice.Times(l.Quantity), l.TotalPrice, "line %d", i+1)
	}
}

func assertSinglePendingBatch(t *testing.T, lines []model.OrderLine) {
	t.Helper()
	dinners := map[string]struct{}{}
	for _, l := range lines {
		if l.IsPending() {
			dinners[l.DinnerID] = struct{}{}
		}
	}
	assert.LessOrEqual(t, len(dinners), 1, "pending lines must belong to one dinner")
}

func TestOrderWithStyleAndQuantityCreatesBackedLines(t *testing.T) {
	h := newHarness(t)

	res := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{
		MenuName:  "Valentine Dinner",
		StyleName: "Simple Style",
		Quantity:  model.IntPtr(2),
	})

	require.Len(t, res.Lines, 2)
	for _, l := range res.Lines {
		assert.True(t, l.IsCatalogBacked())
		assert.Equal(t, 1, l.Quantity)
		assert.Equal(t, simpleID.String(), l.ServingStyleID)
	}
	assert.Equal(t, valentinePrice.Times(2), res.TotalPrice)
	assert.Equal(t, model.StateAskingMore, res.FlowState)
	assert.Equal(t, model.UIActionUpdateOrderList, res.UIAction)
	require.NotNil(t, res.StoreUpdate)
	assert.Len(t, res.StoreUpdate.DinnersToAdd, 2)
	assert.Len(t, h.products.created, 2)
	assert.Equal(t, testAddresses[0], h.products.created[0].Address)
	assertPriceInvariant(t, res.Lines)
}

func TestOrderWithoutStyleThenSelectStyleCompletesBatch(t *testing.T) {
	h := newHarness(t)

	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "발렌타인 디너", Quantity: model.IntPtr(3)})
	require.Len(t, first.Lines, 3)
	assert.Equal(t, model.StateSelectingStyle, first.FlowState)
	assert.Contains(t, first.AssistantMessage, "스타일")
	assert.Empty(t, h.products.created)
	assertSinglePendingBatch(t, first.Lines)

	second := h.turn(addressed(first.Lines), model.IntentSelectStyle, model.EntityBag{StyleName: "그랜드"})
	require.Len(t, second.Lines, 3)
	assert.Equal(t, (valentinePrice + grandExtra).Times(3), second.TotalPrice)
	assert.Equal(t, model.StateAskingMore, second.FlowState)
	require.NotNil(t, second.StoreUpdate)
	assert.Len(t, second.StoreUpdate.StylesToSet, 3)
	for _, set := range second.StoreUpdate.StylesToSet {
		assert.NotEmpty(t, set.Line.ProductID)
	}
	assertPriceInvariant(t, second.Lines)
	assertSinglePendingBatch(t, second.Lines)
}

func TestSinglePendingLineTakesSuppliedQuantity(t *testing.T) {
	h := newHarness(t)

	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "valentine"})
	require.Len(t, first.Lines, 1)

	second := h.turn(addressed(first.Lines), model.IntentOrderMenu, model.EntityBag{StyleName: "grand", Quantity: model.IntPtr(2)})
	require.Len(t, second.Lines, 1)
	assert.Equal(t, 2, second.Lines[0].Quantity)
	assert.Equal(t, (valentinePrice + grandExtra).Times(2), second.TotalPrice)
}

func TestDifferentDinnerWhilePendingIsRejected(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner"})

	res := h.turn(addressed(first.Lines), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner"})

	assert.Equal(t, first.Lines, res.Lines)
	assert.Equal(t, model.StateSelectingStyle, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "먼저")
	assert.Nil(t, res.StoreUpdate)
}

func TestDifferentDinnerWhileQuantityPendingIsRejected(t *testing.T) {
	h := newHarness(t)
	pending := cart.ApplyStyle(
		cart.AddPendingLine(model.Dinner{ID: valentineID, Name: "Valentine Dinner", BasePrice: valentinePrice}),
		model.ServingStyle{ID: grandID, Name: "Grand Style", ExtraPrice: grandExtra},
	)
	require.Zero(t, pending.Quantity)
	lines := []model.OrderLine{pending}

	res := h.turn(addressed(lines), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner", Quantity: model.IntPtr(3)})

	assert.Equal(t, lines, res.Lines)
	assert.Equal(t, model.StateSelectingQuantity, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "발렌타인 디너")
	assert.Empty(t, h.products.quantityWrites)
	assert.Empty(t, h.products.created)

	same := h.turn(addressed(lines), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", Quantity: model.IntPtr(3)})
	require.Len(t, same.Lines, 1)
	assert.Equal(t, 3, same.Lines[0].Quantity)
}

func TestOrderingWithoutAddressAsksForOne(t *testing.T) {
	h := newHarness(t)

	res := h.turn(model.TurnInput{}, model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	assert.Empty(t, res.Lines)
	assert.Equal(t, model.StateSelectingAddress, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "1. "+testAddresses[0])
	assert.Contains(t, res.AssistantMessage, "2. "+testAddresses[1])
	assert.Empty(t, h.products.created)
	assert.Equal(t, model.UIActionRequestAddress, res.UIAction)

	noSaved := h.engine.Process(context.Background(), model.TurnInput{UserID: "user-2"},
		model.Interpretation{Intent: model.IntentOrderMenu, Entities: model.EntityBag{MenuName: "Valentine Dinner"}})
	assert.Equal(t, model.StateSelectingAddress, noSaved.FlowState)
	assert.Equal(t, model.UIActionNone, noSaved.UIAction)
}

func TestSelectAddress(t *testing.T) {
	h := newHarness(t)

	res := h.turn(model.TurnInput{}, model.IntentSelectAddress, model.EntityBag{AddressIndex: model.IntPtr(2)})
	assert.Equal(t, testAddresses[1], res.SelectedAddress)
	assert.Equal(t, model.StateSelectingMenu, res.FlowState)
	require.NotNil(t, res.StoreUpdate)
	assert.Equal(t, testAddresses[1], res.StoreUpdate.SelectedAddress)

	bad := h.turn(model.TurnInput{}, model.IntentSelectAddress, model.EntityBag{AddressIndex: model.IntPtr(5)})
	assert.Empty(t, bad.SelectedAddress)
	assert.Equal(t, model.StateSelectingAddress, bad.FlowState)
	assert.Equal(t, model.UIActionRequestAddress, bad.UIAction)

	none := h.engine.Process(context.Background(), model.TurnInput{UserID: "user-2"},
		model.Interpretation{Intent: model.IntentSelectAddress, Entities: model.EntityBag{AddressIndex: model.IntPtr(1)}})
	assert.Equal(t, model.UIActionNone, none.UIAction)
}

func TestQuantityBeforeStyleIsRejected(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner"})

	res := h.turn(addressed(first.Lines), model.IntentSetQuantity, model.EntityBag{Quantity: model.IntPtr(4)})

	assert.Equal(t, first.Lines, res.Lines)
	assert.Equal(t, model.StateSelectingStyle, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "먼저 스타일을 선택해주세요")
}

func TestSetQuantityWritesThrough(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner", StyleName: "deluxe"})

	res := h.turn(addressed(first.Lines), model.IntentSetQuantity, model.EntityBag{Quantity: model.IntPtr(3)})

	require.Len(t, res.Lines, 1)
	assert.Equal(t, 3, res.Lines[0].Quantity)
	assert.Equal(t, model.Money(62000*3), res.TotalPrice)
	assert.Equal(t, 3, h.products.quantityWrites[res.Lines[0].ProductID])
	assertPriceInvariant(t, res.Lines)
}

func TestIncompatibleStyleKeepsLinePending(t *testing.T) {
	h := newHarness(t)

	res := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "샴페인 축제 디너", StyleName: "심플"})

	require.Len(t, res.Lines, 1)
	assert.False(t, res.Lines[0].HasStyle())
	assert.Equal(t, model.StateSelectingStyle, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "선택할 수 없어요")
	assert.Contains(t, res.AssistantMessage, "샴페인 축제 디너 1개를 담았어요")
	assert.NotContains(t, res.AssistantMessage, "심플,")
	require.NotNil(t, res.StoreUpdate)
	assert.Len(t, res.StoreUpdate.DinnersToAdd, 1)
}

func TestUnknownDinnerIsCorrected(t *testing.T) {
	h := newHarness(t)

	res := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Sushi Platter"})

	assert.Empty(t, res.Lines)
	assert.Equal(t, model.StateSelectingMenu, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "Sushi Platter")
	assert.Contains(t, res.AssistantMessage, "발렌타인 디너")
}

func TestCustomizeComponentToZeroAndBack(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{
		MenuName: "Valentine Dinner", StyleName: "simple", Quantity: model.IntPtr(2),
	})
	before := ordered.TotalPrice

	removed := h.turn(addressed(ordered.Lines), model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "스테이크", MenuItemQuantity: model.IntPtr(0),
	})

	require.Len(t, removed.Lines, 2)
	assert.Equal(t, model.StateCustomizing, removed.FlowState)
	assert.Equal(t, before-steakPrice, removed.TotalPrice)
	assert.Equal(t, 0, removed.Lines[0].Components[0].Quantity)
	assert.Equal(t, valentinePrice, removed.Lines[1].TotalPrice)
	assert.Equal(t, []componentWrite{{"product-1", steakID.String(), 0}}, h.products.componentWrites)
	require.NotNil(t, removed.StoreUpdate)
	assert.Equal(t, 0, removed.StoreUpdate.MenuItemUpdates[0].Quantity)
	assertPriceInvariant(t, removed.Lines)

	restored := h.turn(addressed(removed.Lines), model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "steak", Action: model.ComponentAdd,
	})
	assert.Equal(t, 1, restored.Lines[0].Components[0].Quantity)
	assert.Equal(t, before, restored.TotalPrice)
}

func TestCustomizeTargetsOrdinalLineAndAddsNewComponent(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{
		MenuName: "Valentine Dinner", StyleName: "simple", Quantity: model.IntPtr(2),
	})

	in := addressed(ordered.Lines)
	in.Message = "두 번째 디너에 샐러드 2개 추가해줘"
	res := h.turn(in, model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "샐러드", Action: model.ComponentAdd, MenuItemQuantity: model.IntPtr(2),
	})

	assert.Len(t, res.Lines[0].Components, 2)
	require.Len(t, res.Lines[1].Components, 3)
	salad := res.Lines[1].Components[2]
	assert.Equal(t, saladID.String(), salad.MenuItemID)
	assert.Equal(t, 2, salad.Quantity)
	assert.Equal(t, valentinePrice+12000, res.Lines[1].TotalPrice)
}

func TestCustomizeRemoveByDeltaFloorsAtZero(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	res := h.turn(addressed(ordered.Lines), model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "와인", Action: model.ComponentRemove, MenuItemQuantity: model.IntPtr(3),
	})

	assert.Equal(t, 0, res.Lines[0].Components[1].Quantity)
	assert.Equal(t, valentinePrice-winePrice, res.TotalPrice)
}

func TestCustomizeSignedDeltaUsesMagnitude(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})
	more := h.turn(addressed(ordered.Lines), model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "steak", Action: model.ComponentAdd, MenuItemQuantity: model.IntPtr(-2),
	})
	require.Equal(t, 3, more.Lines[0].Components[0].Quantity)
	assert.Equal(t, valentinePrice+steakPrice.Times(2), more.TotalPrice)

	fewer := h.turn(addressed(more.Lines), model.IntentCustomizeMenu, model.EntityBag{
		MenuItemName: "steak", Action: model.ComponentRemove, MenuItemQuantity: model.IntPtr(-2),
	})

	assert.Equal(t, 1, fewer.Lines[0].Components[0].Quantity)
	assert.Equal(t, valentinePrice, fewer.TotalPrice)
	assertPriceInvariant(t, fewer.Lines)
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{
		MenuName: "Valentine Dinner", StyleName: "simple", Quantity: model.IntPtr(2),
	})
	pending := h.turn(addressed(ordered.Lines), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner"})
	require.Len(t, pending.Lines, 3)

	res := h.turn(addressed(pending.Lines), model.IntentConfirmOrder, model.EntityBag{SpecialRequest: "문 앞에 놓아주세요"})

	require.Len(t, h.orders.requests, 1)
	req := h.orders.requests[0]
	assert.Len(t, req.Lines, 2)
	assert.Equal(t, "문 앞에 놓아주세요", req.Memo)
	assert.Equal(t, valentinePrice.Times(2), req.Total())

	assert.Equal(t, model.StateCompleted, res.FlowState)
	assert.Equal(t, model.UIActionOrderCompleted, res.UIAction)
	assert.Empty(t, res.Lines)
	assert.Equal(t, model.Money(0), res.TotalPrice)
	assert.Equal(t, "ORD-ABCD1234", res.OrderNumber)
	assert.Equal(t, "order-1", res.OrderID)
	require.NotNil(t, res.StoreUpdate)
	assert.True(t, res.StoreUpdate.ClearCart)
	assert.Len(t, h.events.placed, 1)
}

func TestCheckoutFailureKeepsCartForRetry(t *testing.T) {
	h := newHarness(t)
	h.orders.err = errors.New("tx aborted")
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	res := h.turn(addressed(ordered.Lines), model.IntentAddToCart, model.EntityBag{})

	assert.Equal(t, model.StateReadyToCheckout, res.FlowState)
	assert.Equal(t, model.UIActionShowConfirmModal, res.UIAction)
	assert.Len(t, res.Lines, 1)
	assert.Empty(t, res.OrderID)
	assert.Contains(t, res.AssistantMessage, "죄송합니다")
	assert.Empty(t, h.events.placed)
}

func TestCheckoutWithOnlyIncompleteLinesPlacesNothing(t *testing.T) {
	h := newHarness(t)
	pending := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner"})

	res := h.turn(addressed(pending.Lines), model.IntentConfirmOrder, model.EntityBag{})

	assert.Empty(t, h.orders.requests)
	assert.Empty(t, res.Lines)
	assert.Equal(t, model.StateSelectingMenu, res.FlowState)
}

func TestConfirmYesAndNo(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	no := h.turn(addressed(ordered.Lines), model.IntentConfirmNo, model.EntityBag{})
	assert.Equal(t, model.StateAskingMore, no.FlowState)
	assert.Empty(t, h.orders.requests)

	yes := h.turn(addressed(ordered.Lines), model.IntentConfirmYes, model.EntityBag{})
	assert.Equal(t, model.StateCompleted, yes.FlowState)
	assert.Len(t, h.orders.requests, 1)
}

func TestRemoveAndCancel(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})
	second := h.turn(addressed(first.Lines), model.IntentOrderMenu, model.EntityBag{MenuName: "French Dinner", StyleName: "grand"})
	require.Len(t, second.Lines, 2)

	removed := h.turn(addressed(second.Lines), model.IntentRemoveItem, model.EntityBag{MenuName: "발렌타인"})
	require.Len(t, removed.Lines, 1)
	assert.Equal(t, "French Dinner", removed.Lines[0].DinnerName)
	assert.Equal(t, model.StateAskingMore, removed.FlowState)
	assert.Equal(t, []int{0}, removed.StoreUpdate.RemovedLineIndexes)

	last := h.turn(addressed(removed.Lines), model.IntentRemoveItem, model.EntityBag{MenuName: "LAST"})
	assert.Empty(t, last.Lines)
	assert.Equal(t, model.StateSelectingMenu, last.FlowState)

	cancelled := h.turn(addressed(second.Lines), model.IntentCancelOrder, model.EntityBag{})
	assert.Empty(t, cancelled.Lines)
	assert.Empty(t, cancelled.SelectedAddress)
	assert.Equal(t, model.StateIdle, cancelled.FlowState)
	assert.Equal(t, model.UIActionShowCancelConfirm, cancelled.UIAction)
	assert.True(t, cancelled.StoreUpdate.ClearCart)
}

func TestEditOrderChangesStyleAndQuantity(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	res := h.turn(addressed(first.Lines), model.IntentEditOrder, model.EntityBag{
		MenuName: "valentine", StyleName: "grand", Quantity: model.IntPtr(2),
	})

	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Grand Style", res.Lines[0].ServingStyleName)
	assert.Equal(t, 2, res.Lines[0].Quantity)
	assert.Equal(t, (valentinePrice + grandExtra).Times(2), res.TotalPrice)
	assert.NotEqual(t, first.Lines[0].ProductID, res.Lines[0].ProductID)
	assertPriceInvariant(t, res.Lines)
}

func TestAdditionalMenuAndMemo(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	extra := h.turn(addressed(first.Lines), model.IntentAddAdditionalMenu, model.EntityBag{MenuItemName: "바게트", Quantity: model.IntPtr(2)})
	require.Len(t, extra.Ancillary, 1)
	assert.Equal(t, model.Money(6000), extra.Ancillary[0].TotalPrice)
	assert.Equal(t, valentinePrice+6000, extra.TotalPrice)
	assert.Equal(t, model.StateAskingMore, extra.FlowState)

	in := addressed(extra.Lines)
	in.Ancillary = extra.Ancillary
	memo := h.turn(in, model.IntentSetMemo, model.EntityBag{SpecialRequest: "벨 누르지 마세요"})
	assert.Equal(t, "벨 누르지 마세요", memo.SpecialRequest)
	assert.Equal(t, model.StateReadyToCheckout, memo.FlowState)
	assert.Equal(t, model.UIActionShowConfirmModal, memo.UIAction)
}

func TestSkipCustomizeRequestsPayment(t *testing.T) {
	h := newHarness(t)
	first := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	res := h.turn(addressed(first.Lines), model.IntentSkipCustomize, model.EntityBag{})

	assert.Equal(t, model.StateReadyToCheckout, res.FlowState)
	assert.Equal(t, model.UIActionRequestPayment, res.UIAction)
	assert.Contains(t, res.AssistantMessage, valentinePrice.String())
}

func TestUnknownIntentReassertsState(t *testing.T) {
	h := newHarness(t)
	pending := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner"})

	res := h.turn(addressed(pending.Lines), model.IntentUnknown, model.EntityBag{})

	assert.Equal(t, pending.Lines, res.Lines)
	assert.Equal(t, model.StateSelectingStyle, res.FlowState)
	assert.Contains(t, res.AssistantMessage, "스타일을 선택해주세요")
}

func TestHydrateRestoresDroppedFields(t *testing.T) {
	h := newHarness(t)
	ordered := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "grand"})

	stripped := slices.Clone(ordered.Lines)
	stripped[0].Components = nil
	stripped[0].StylePrice = 0
	stripped[0].TotalPrice = 0

	res := h.turn(addressed(stripped), model.IntentAskOrderStatus, model.EntityBag{})

	assert.Len(t, res.Lines[0].Components, 2)
	assert.Equal(t, valentinePrice+grandExtra, res.TotalPrice)
}

func TestBackingFailureLeavesLineUnbacked(t *testing.T) {
	h := newHarness(t)
	h.products.failCreate = true

	res := h.turn(addressed(nil), model.IntentOrderMenu, model.EntityBag{MenuName: "Valentine Dinner", StyleName: "simple"})

	require.Len(t, res.Lines, 1)
	assert.False(t, res.Lines[0].IsCatalogBacked())
	assert.Equal(t, model.StateAskingMore, res.FlowState)
}
