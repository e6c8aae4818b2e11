// Package export renders reports and quotes into downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"estampa-fina/internal/model"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header plus string rows, the unit exported to CSV and to one
// XLSX sheet.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Report table names accepted by ReportTable.
const (
	TableSummary     = "summary"
	TableSalesByDay  = "sales-by-day"
	TableTopProducts = "top-products"
	TableTopClients  = "top-clients"
)

// TableNames lists the report tables in sheet order.
var TableNames = []string{TableSummary, TableSalesByDay, TableTopProducts, TableTopClients}

// ReportTable returns the named table of r.
func ReportTable(r *model.Report, name string) (Table, bool) {
	switch name {
	case TableSummary:
		return Table{
			Name:   name,
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"From", r.From.Format("2006-01-02")},
				{"To", r.To.Format("2006-01-02")},
				{"Total Revenue", formatMoney(r.TotalRevenue)},
				{"Sales", strconv.Itoa(r.SalesCount)},
				{"Average Ticket", formatMoney(r.AverageTicket)},
				{"Total Cost", formatMoney(r.TotalCost)},
				{"Total Profit", formatMoney(r.TotalProfit)},
				{"Stock Value", formatMoney(r.StockValue)},
				{"Low Stock Products", strconv.Itoa(r.LowStockCount)},
			},
		}, true
	case TableSalesByDay:
		t := Table{Name: name, Header: []string{"Date", "Sales", "Total"}}
		for _, d := range r.SalesByDay {
			t.Rows = append(t.Rows, []string{d.Date, strconv.Itoa(d.Count), formatMoney(d.Total)})
		}
		return t, true
	case TableTopProducts:
		t := Table{Name: name, Header: []string{"Product", "Quantity", "Revenue"}}
		for _, p := range r.TopProducts {
			t.Rows = append(t.Rows, []string{p.Name, strconv.Itoa(p.Quantity), formatMoney(p.Revenue)})
		}
		return t, true
	case TableTopClients:
		t := Table{Name: name, Header: []string{"Client", "Orders", "Total"}}
		for _, c := range r.TopClients {
			t.Rows = append(t.Rows, []string{c.Name, strconv.Itoa(c.Orders), formatMoney(c.Total)})
		}
		return t, true
	}
	return Table{}, false
}

// WriteCSV writes the BOM, the header row and every row of t.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func formatMoney(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "export"
	}
	return s
}

// BuildFilename returns {sanitized name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
