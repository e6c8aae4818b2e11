package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"estampa-fina/internal/model"
)

// QuotePDF renders a quote with the company branding from s.
func QuotePDF(q *model.Quote, s *model.Settings) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	brand := hexColor(s.PrimaryColor)

	m.AddRow(12,
		text.NewCol(8, s.CompanyName, props.Text{Size: 18, Style: fontstyle.Bold, Color: brand}),
		text.NewCol(4, "QUOTE", props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right, Color: brand}),
	)
	m.AddRow(6,
		text.NewCol(8, "Customer: "+q.CustomerName, props.Text{Size: 10}),
		text.NewCol(4, "Date: "+q.Date.Format("02/01/2006"), props.Text{Size: 10, Align: align.Right}),
	)
	if q.CustomerEmail != "" {
		m.AddRow(6, text.NewCol(12, q.CustomerEmail, props.Text{Size: 9}))
	}
	m.AddRow(6,
		text.NewCol(8, "Status: "+string(q.Status), props.Text{Size: 9}),
		text.NewCol(4, "No. "+shortID(q.ID.String()), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRows(line.NewRow(4))

	bold := props.Text{Size: 10, Style: fontstyle.Bold}
	m.AddRow(8,
		text.NewCol(6, "Item", bold),
		text.NewCol(2, "Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Subtotal", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, it := range q.Items {
		m.AddRow(7,
			text.NewCol(6, it.Name, props.Text{Size: 9}),
			text.NewCol(2, strconv.Itoa(it.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, brl(it.SalePrice.StringFixed(2)), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, brl(it.Subtotal().StringFixed(2)), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRows(line.NewRow(4))
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(3, brl(q.TotalValue.StringFixed(2)), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Color: brand}),
	)
	if q.Notes != "" {
		m.AddRow(12, text.NewCol(12, q.Notes, props.Text{Size: 9, Top: 4}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating quote pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// brl formats a fixed two-decimal amount as Brazilian currency, e.g. R$ 1.234,50.
func brl(fixed string) string {
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// hexColor parses #rgb or #rrggbb; anything else renders black.
func hexColor(s string) *props.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return &props.Color{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return &props.Color{}
	}
	return &props.Color{Red: int(v >> 16 & 0xff), Green: int(v >> 8 & 0xff), Blue: int(v & 0xff)}
}
