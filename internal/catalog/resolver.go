package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
	logx "github.com/mrdaeback/voice-order/pkg/logger"
)

// Source loads catalog data from the durable store.
type Source interface {
	ListActiveDinners(ctx context.Context) ([]model.Dinner, error)
	ListActiveStyles(ctx context.Context) ([]model.ServingStyle, error)
	ListMenuItems(ctx context.Context) ([]model.MenuItem, error)
}

// Resolver resolves free-text names to catalog records over a process-lifetime cache.
// Reads are safe for concurrent use; a reload swaps the snapshot under the lock.
type Resolver struct {
	src Source

	mu     sync.RWMutex
	snap   model.CatalogSnapshot
	loaded bool
}

func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Warm loads the catalog once. Subsequent calls are no-ops.
func (r *Resolver) Warm(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}
	return r.Reload(ctx)
}

// Reload fetches the catalog again regardless of cache state.
func (r *Resolver) Reload(ctx context.Context) error {
	dinners, err := r.src.ListActiveDinners(ctx)
	if err != nil {
		return fmt.Errorf("list dinners: %w", err)
	}
	styles, err := r.src.ListActiveStyles(ctx)
	if err != nil {
		return fmt.Errorf("list serving styles: %w", err)
	}
	items, err := r.src.ListMenuItems(ctx)
	if err != nil {
		return fmt.Errorf("list menu items: %w", err)
	}

	r.mu.Lock()
	r.snap = model.CatalogSnapshot{Dinners: dinners, Styles: styles, MenuItems: items}
	r.loaded = true
	r.mu.Unlock()

	logx.Info().
		Int("dinners", len(dinners)).
		Int("styles", len(styles)).
		Int("menu_items", len(items)).
		Msg("catalog loaded")
	return nil
}

func (r *Resolver) snapshot() (model.CatalogSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return model.CatalogSnapshot{}, errx.ErrCatalogNotLoaded
	}
	return r.snap, nil
}

// Snapshot returns the cached catalog.
func (r *Resolver) Snapshot() (model.CatalogSnapshot, error) {
	return r.snapshot()
}

// ResolveDinner matches exactly (case-insensitive) first, then by normalized
// substring in either direction. Only active dinners are eligible.
func (r *Resolver) ResolveDinner(name string) (model.Dinner, bool) {
	snap, err := r.snapshot()
	if err != nil || strings.TrimSpace(name) == "" {
		return model.Dinner{}, false
	}

	for _, d := range snap.Dinners {
		if d.Active && (strings.EqualFold(strings.TrimSpace(name), d.Name) || fold(name) == fold(DisplayDinnerName(d.Name))) {
			return d, true
		}
	}

	query := stripGeneric(normalizeDinnerName(name))
	if query == "" {
		return model.Dinner{}, false
	}
	for _, d := range snap.Dinners {
		if !d.Active {
			continue
		}
		candidate := normalizeDinnerName(d.Name)
		core := stripGeneric(candidate)
		if strings.Contains(candidate, query) || (core != "" && strings.Contains(query, core)) {
			return d, true
		}
	}
	return model.Dinner{}, false
}

// stripGeneric drops the token shared by every dinner name so it cannot match on its own.
func stripGeneric(s string) string {
	return strings.ReplaceAll(s, "dinner", "")
}

// ResolveStyle matches a style exactly among its aliases: the catalog name,
// the name without the "Style" suffix, and the Korean display name.
func (r *Resolver) ResolveStyle(name string) (model.ServingStyle, bool) {
	snap, err := r.snapshot()
	if err != nil {
		return model.ServingStyle{}, false
	}
	want := fold(name)
	if want == "" {
		return model.ServingStyle{}, false
	}
	for _, s := range snap.Styles {
		if !s.Active {
			continue
		}
		for _, alias := range styleAliases(s.Name) {
			if want == alias {
				return s, true
			}
		}
	}
	return model.ServingStyle{}, false
}

func styleAliases(name string) []string {
	base := fold(name)
	short := strings.TrimSpace(strings.TrimSuffix(base, "style"))
	ko := fold(DisplayStyleName(name))
	return []string{base, short, ko, ko + " 스타일", ko + "스타일"}
}

// IsStyleCompatible reports whether the style may be served with the dinner.
func (r *Resolver) IsStyleCompatible(dinnerName, styleName string) bool {
	return IsStyleCompatible(dinnerName, styleName)
}

// AvailableStyles lists the active styles compatible with a dinner.
func (r *Resolver) AvailableStyles(dinnerName string) []model.ServingStyle {
	snap, err := r.snapshot()
	if err != nil {
		return nil
	}
	var out []model.ServingStyle
	for _, s := range snap.Styles {
		if s.Active && IsStyleCompatible(dinnerName, s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// AvailableStyleNames renders AvailableStyles as Korean display names, e.g. "그랜드, 디럭스".
func (r *Resolver) AvailableStyleNames(dinnerName string) string {
	styles := r.AvailableStyles(dinnerName)
	names := make([]string, 0, len(styles))
	for _, s := range styles {
		names = append(names, DisplayStyleName(s.Name))
	}
	return strings.Join(names, ", ")
}

// DinnerByID looks up a dinner, active or not.
func (r *Resolver) DinnerByID(id string) (model.Dinner, bool) {
	snap, err := r.snapshot()
	if err != nil {
		return model.Dinner{}, false
	}
	for _, d := range snap.Dinners {
		if d.ID.String() == id {
			return d, true
		}
	}
	return model.Dinner{}, false
}

// StyleByID looks up a style.
func (r *Resolver) StyleByID(id string) (model.ServingStyle, bool) {
	snap, err := r.snapshot()
	if err != nil {
		return model.ServingStyle{}, false
	}
	for _, s := range snap.Styles {
		if s.ID.String() == id {
			return s, true
		}
	}
	return model.ServingStyle{}, false
}

// MenuItemByID looks up a menu item.
func (r *Resolver) MenuItemByID(id uuid.UUID) (model.MenuItem, bool) {
	snap, err := r.snapshot()
	if err != nil {
		return model.MenuItem{}, false
	}
	for _, m := range snap.MenuItems {
		if m.ID == id {
			return m, true
		}
	}
	return model.MenuItem{}, false
}

// ResolveMenuItem finds a menu item by exact name, then by component name matching.
func (r *Resolver) ResolveMenuItem(name string) (model.MenuItem, bool) {
	snap, err := r.snapshot()
	if err != nil || strings.TrimSpace(name) == "" {
		return model.MenuItem{}, false
	}
	for _, m := range snap.MenuItems {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	for _, m := range snap.MenuItems {
		if MatchComponentName(m.Name, name) {
			return m, true
		}
	}
	return model.MenuItem{}, false
}
