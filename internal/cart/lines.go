// Package cart holds pure functions over caller-held order lines.
// Every function returns new values and never mutates its inputs.
package cart

import (
	"slices"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	errx "github.com/mrdaeback/voice-order/internal/core/error"
)

// AddPendingLine starts a line for a dinner with no style and quantity 0.
func AddPendingLine(d model.Dinner) model.OrderLine {
	return Reprice(model.OrderLine{
		DinnerID:   d.ID.String(),
		DinnerName: d.Name,
		BasePrice:  d.BasePrice,
	})
}

// ApplyStyle sets or replaces the style and recomputes prices with the current quantity.
func ApplyStyle(line model.OrderLine, s model.ServingStyle) model.OrderLine {
	out := clone(line)
	out.ServingStyleID = s.ID.String()
	out.ServingStyleName = s.Name
	out.StylePrice = s.ExtraPrice
	return Reprice(out)
}

// SetQuantity sets the number of units. The style must already be chosen.
func SetQuantity(line model.OrderLine, qty int) (model.OrderLine, error) {
	if qty < 1 {
		return line, errx.ErrInvalidQuantity
	}
	if !line.HasStyle() {
		return line, errx.ErrStyleRequired
	}
	out := clone(line)
	out.Quantity = qty
	return Reprice(out), nil
}

// SetComponentQuantity changes one component's quantity, clamped at 0.
// A component at 0 is excluded, not removed, so it can be added back later.
func SetComponentQuantity(line model.OrderLine, menuItemID string, qty int) (model.OrderLine, error) {
	idx := slices.IndexFunc(line.Components, func(c model.ComponentCustomization) bool {
		return c.MenuItemID == menuItemID
	})
	if idx < 0 {
		return line, errx.ErrLineNotFound
	}
	out := clone(line)
	out.Components[idx].Quantity = max(qty, 0)
	return Reprice(out), nil
}

// AddComponent appends a component that is not part of the dinner's defaults.
func AddComponent(line model.OrderLine, item model.MenuItem, qty int) model.OrderLine {
	out := clone(line)
	out.Components = append(out.Components, model.ComponentCustomization{
		MenuItemID:      item.ID.String(),
		Name:            item.Name,
		DefaultQuantity: 0,
		Quantity:        max(qty, 0),
		UnitPrice:       item.UnitPrice,
	})
	return Reprice(out)
}

// AttachRecord folds a persisted product into the line. Components already
// customized on the line are kept.
func AttachRecord(line model.OrderLine, rec model.LineRecord) model.OrderLine {
	out := clone(line)
	out.ProductID = rec.ProductID
	if len(out.Components) == 0 {
		out.Components = slices.Clone(rec.Components)
	}
	return Reprice(out)
}

// DetachRecord drops the backing product, e.g. after the style changed.
func DetachRecord(line model.OrderLine) model.OrderLine {
	out := clone(line)
	out.ProductID = ""
	out.Components = nil
	return Reprice(out)
}

// ComponentDelta sums (current - default) * unit price over all components.
func ComponentDelta(line model.OrderLine) model.Money {
	var delta model.Money
	for _, c := range line.Components {
		delta += c.Delta()
	}
	return delta
}

// Reprice recomputes unit price and total from base, style and component deltas.
func Reprice(line model.OrderLine) model.OrderLine {
	line.UnitPrice = line.BasePrice + line.StylePrice + ComponentDelta(line)
	line.TotalPrice = line.UnitPrice.Times(line.Quantity)
	return line
}

// FindComponent returns the index of the component matching name, or -1.
func FindComponent(line model.OrderLine, match func(catalogName string) bool) int {
	return slices.IndexFunc(line.Components, func(c model.ComponentCustomization) bool {
		return match(c.Name)
	})
}

// LinesTotal sums line totals.
func LinesTotal(lines []model.OrderLine) model.Money {
	var total model.Money
	for _, l := range lines {
		total += l.TotalPrice
	}
	return total
}

// GrandTotal sums line totals and ancillary item totals.
func GrandTotal(lines []model.OrderLine, ancillary []model.AncillaryItem) model.Money {
	total := LinesTotal(lines)
	for _, a := range ancillary {
		total += a.TotalPrice
	}
	return total
}

// PendingIndexes returns the indexes of pending lines.
func PendingIndexes(lines []model.OrderLine) []int {
	var idx []int
	for i, l := range lines {
		if l.IsPending() {
			idx = append(idx, i)
		}
	}
	return idx
}

// StylelessIndexes returns the indexes of lines without a style.
func StylelessIndexes(lines []model.OrderLine) []int {
	var idx []int
	for i, l := range lines {
		if !l.HasStyle() {
			idx = append(idx, i)
		}
	}
	return idx
}

// CompleteLines drops every pending line.
func CompleteLines(lines []model.OrderLine) []model.OrderLine {
	out := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.IsComplete() {
			out = append(out, clone(l))
		}
	}
	return out
}

// Replace returns a copy of lines with lines[i] swapped for line.
func Replace(lines []model.OrderLine, i int, line model.OrderLine) []model.OrderLine {
	out := slices.Clone(lines)
	out[i] = line
	return out
}

// Remove returns a copy of lines without lines[i].
func Remove(lines []model.OrderLine, i int) []model.OrderLine {
	return slices.Delete(slices.Clone(lines), i, i+1)
}

func clone(line model.OrderLine) model.OrderLine {
	line.Components = slices.Clone(line.Components)
	return line
}
