package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/mrdaeback/voice-order/internal/agent/model"
	"github.com/mrdaeback/voice-order/internal/catalog"
)

//go:embed template/order_prompt.txt
var orderSystemPrompt string

type promptDinner struct {
	Name        string
	DisplayName string
	Price       string
	Styles      string
}

type promptStyle struct {
	Name        string
	DisplayName string
	Extra       string
}

type promptLine struct {
	Index    int
	Dinner   string
	Style    string
	Quantity int
	Total    string
	Items    string
}

type promptAddress struct {
	Index   int
	Address string
}

// OrderPromptInput is the turn context rendered into the system prompt.
type OrderPromptInput struct {
	Config          model.OrderPromptConfig
	Catalog         model.CatalogSnapshot
	Lines           []model.OrderLine
	Total           model.Money
	Addresses       []string
	SelectedAddress string
	SpecialRequest  string
}

// RenderOrderSystem renders the order system prompt via the Eino prompt component.
func RenderOrderSystem(ctx context.Context, in OrderPromptInput) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(orderSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, templateVars(in))
	if err != nil {
		return "", fmt.Errorf("order prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("order prompt render: empty result")
	}
	return msgs[0].Content, nil
}

func templateVars(in OrderPromptInput) map[string]any {
	dinners := make([]promptDinner, 0, len(in.Catalog.Dinners))
	for _, d := range in.Catalog.Dinners {
		if !d.Active {
			continue
		}
		var styles []string
		for _, s := range in.Catalog.Styles {
			if s.Active && catalog.IsStyleCompatible(d.Name, s.Name) {
				styles = append(styles, s.Name)
			}
		}
		dinners = append(dinners, promptDinner{
			Name:        d.Name,
			DisplayName: catalog.DisplayDinnerName(d.Name),
			Price:       d.BasePrice.String(),
			Styles:      joinNames(styles),
		})
	}

	styles := make([]promptStyle, 0, len(in.Catalog.Styles))
	for _, s := range in.Catalog.Styles {
		if !s.Active {
			continue
		}
		styles = append(styles, promptStyle{Name: s.Name, DisplayName: catalog.DisplayStyleName(s.Name), Extra: s.ExtraPrice.String()})
	}

	items := make([]string, 0, len(in.Catalog.MenuItems))
	for _, m := range in.Catalog.MenuItems {
		items = append(items, fmt.Sprintf("%s(%s)", m.Name, m.UnitPrice))
	}

	lines := make([]promptLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		var comps []string
		for _, c := range l.Components {
			comps = append(comps, fmt.Sprintf("%s x%d", c.Name, c.Quantity))
		}
		style := l.ServingStyleName
		if style == "" {
			style = "미선택"
		}
		lines = append(lines, promptLine{
			Index:    i + 1,
			Dinner:   l.DinnerName,
			Style:    style,
			Quantity: l.Quantity,
			Total:    l.TotalPrice.String(),
			Items:    joinNames(comps),
		})
	}

	addresses := make([]promptAddress, 0, len(in.Addresses))
	for i, a := range in.Addresses {
		addresses = append(addresses, promptAddress{Index: i + 1, Address: a})
	}

	return map[string]any{
		"BusinessName":    in.Config.BusinessName,
		"Dinners":         dinners,
		"Styles":          styles,
		"MenuItems":       joinNames(items),
		"Lines":           lines,
		"Total":           in.Total.String(),
		"Addresses":       addresses,
		"SelectedAddress": in.SelectedAddress,
		"SpecialRequest":  in.SpecialRequest,
	}
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
