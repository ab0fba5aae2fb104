package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrdaeback/voice-order/internal/agent/model"
)

type fakeSource struct {
	mu      sync.Mutex
	calls   int
	snap    model.CatalogSnapshot
	failing bool
}

func (f *fakeSource) ListActiveDinners(ctx context.Context) ([]model.Dinner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return nil, errors.New("db down")
	}
	return f.snap.Dinners, nil
}

func (f *fakeSource) ListActiveStyles(ctx context.Context) ([]model.ServingStyle, error) {
	return f.snap.Styles, nil
}

func (f *fakeSource) ListMenuItems(ctx context.Context) ([]model.MenuItem, error) {
	return f.snap.MenuItems, nil
}

func testSnapshot() model.CatalogSnapshot {
	return model.CatalogSnapshot{
		Dinners: []model.Dinner{
			{ID: uuid.New(), Name: "Valentine Dinner", BasePrice: 45000, Active: true},
			{ID: uuid.New(), Name: "French Dinner", BasePrice: 52000, Active: true},
			{ID: uuid.New(), Name: "English Dinner", BasePrice: 48000, Active: true},
			{ID: uuid.New(), Name: "Champagne Feast Dinner", BasePrice: 120000, Active: true},
			{ID: uuid.New(), Name: "Retired Dinner", BasePrice: 1000, Active: false},
		},
		Styles: []model.ServingStyle{
			{ID: uuid.New(), Name: "Simple Style", ExtraPrice: 0, Active: true},
			{ID: uuid.New(), Name: "Grand Style", ExtraPrice: 5000, Active: true},
			{ID: uuid.New(), Name: "Deluxe Style", ExtraPrice: 10000, Active: true},
		},
		MenuItems: []model.MenuItem{
			{ID: uuid.New(), Name: "Steak", UnitPrice: 15000},
			{ID: uuid.New(), Name: "Wine", UnitPrice: 8000},
			{ID: uuid.New(), Name: "Champagne", UnitPrice: 30000},
			{ID: uuid.New(), Name: "Baguette Bread", UnitPrice: 3000},
		},
	}
}

func newTestResolver(t *testing.T) (*Resolver, *fakeSource) {
	t.Helper()
	src := &fakeSource{snap: testSnapshot()}
	r := NewResolver(src)
	require.NoError(t, r.Warm(context.Background()))
	return r, src
}

func TestResolverNotLoaded(t *testing.T) {
	r := NewResolver(&fakeSource{snap: testSnapshot()})
	_, ok := r.ResolveDinner("Valentine Dinner")
	assert.False(t, ok)
	_, err := r.Snapshot()
	assert.Error(t, err)
}

func TestWarmLoadsOnceAndReloadForces(t *testing.T) {
	r, src := newTestResolver(t)
	require.NoError(t, r.Warm(context.Background()))
	assert.Equal(t, 1, src.calls)

	require.NoError(t, r.Reload(context.Background()))
	assert.Equal(t, 2, src.calls)

	src.failing = true
	assert.Error(t, r.Reload(context.Background()))
	_, ok := r.ResolveDinner("French Dinner")
	assert.True(t, ok, "stale snapshot stays usable after a failed reload")
}

func TestResolveDinner(t *testing.T) {
	r, _ := newTestResolver(t)

	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"valentine dinner", "Valentine Dinner", true},
		{"발렌타인 디너", "Valentine Dinner", true},
		{"발렌타인", "Valentine Dinner", true},
		{"french", "French Dinner", true},
		{"잉글리쉬 디너", "English Dinner", true},
		{"샴페인 축제 디너", "Champagne Feast Dinner", true},
		{"샴페인 피스트", "Champagne Feast Dinner", true},
		{"디너", "", false},
		{"Retired Dinner", "", false},
		{"pizza", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			d, ok := r.ResolveDinner(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, d.Name)
		})
	}
}

func TestResolveStyle(t *testing.T) {
	r, _ := newTestResolver(t)

	for in, want := range map[string]string{
		"Simple Style": "Simple Style",
		"simple":       "Simple Style",
		"그랜드":          "Grand Style",
		"디럭스 스타일":      "Deluxe Style",
	} {
		s, ok := r.ResolveStyle(in)
		require.True(t, ok, in)
		assert.Equal(t, want, s.Name)
	}

	_, ok := r.ResolveStyle("delux")
	assert.False(t, ok, "styles match exactly")
}

func TestStyleCompatibility(t *testing.T) {
	r, _ := newTestResolver(t)

	assert.False(t, r.IsStyleCompatible("Champagne Feast Dinner", "Simple Style"))
	assert.False(t, IsStyleCompatible("샴페인 축제 디너", "심플"))
	assert.True(t, r.IsStyleCompatible("Champagne Feast Dinner", "Grand Style"))
	assert.True(t, r.IsStyleCompatible("Valentine Dinner", "Simple Style"))

	assert.Equal(t, "그랜드, 디럭스", r.AvailableStyleNames("Champagne Feast Dinner"))
	assert.Equal(t, "심플, 그랜드, 디럭스", r.AvailableStyleNames("French Dinner"))
}

func TestMatchComponentName(t *testing.T) {
	assert.True(t, MatchComponentName("Steak", "스테이크"))
	assert.True(t, MatchComponentName("Steak", "스테익"))
	assert.True(t, MatchComponentName("Baguette Bread", "빵"))
	assert.True(t, MatchComponentName("Baguette Bread", "bread"))
	assert.True(t, MatchComponentName("Champagne", "샴페인"))
	assert.False(t, MatchComponentName("Wine", "샴페인"), "clusters do not bleed into each other")
	assert.False(t, MatchComponentName("Steak", "와인"))
	assert.False(t, MatchComponentName("Steak", ""))
}

func TestResolveMenuItem(t *testing.T) {
	r, _ := newTestResolver(t)

	m, ok := r.ResolveMenuItem("와인")
	require.True(t, ok)
	assert.Equal(t, "Wine", m.Name)

	byID, ok := r.MenuItemByID(m.ID)
	require.True(t, ok)
	assert.Equal(t, m, byID)

	_, ok = r.ResolveMenuItem("sushi")
	assert.False(t, ok)
}

func TestDisplayNames(t *testing.T) {
	assert.Equal(t, "샴페인 축제 디너", DisplayDinnerName("Champagne Feast Dinner"))
	assert.Equal(t, "디럭스", DisplayStyleName("Deluxe Style"))
	assert.Equal(t, "Mystery", DisplayDinnerName("Mystery"))
}
