package handler

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"estampa-fina/internal/export"
	"estampa-fina/internal/model"
	"estampa-fina/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

func (h *ReportHandler) build(c *fiber.Ctx) (*model.Report, error) {
	from, to, err := h.service.ParseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return nil, err
	}
	return h.service.Generate(from, to)
}

// GetReport returns the aggregated report for ?from=YYYY-MM-DD&to=YYYY-MM-DD
// GET /api/v1/reports
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.build(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// ExportCSV downloads one report table as CSV
// GET /api/v1/reports/export/csv?table=sales-by-day
func (h *ReportHandler) ExportCSV(c *fiber.Ctx) error {
	name := c.Query("table", export.TableSummary)

	report, err := h.build(c)
	if err != nil {
		return fail(c, err)
	}

	table, ok := export.ReportTable(report, name)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown table", "tables": export.TableNames})
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		return fail(c, err)
	}

	c.Attachment(export.BuildFilename("relatorio_"+name, "csv", time.Now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}

// ExportXLSX downloads the whole report as a workbook
// GET /api/v1/reports/export/xlsx
func (h *ReportHandler) ExportXLSX(c *fiber.Ctx) error {
	report, err := h.build(c)
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, report); err != nil {
		return fail(c, err)
	}

	c.Attachment(export.BuildFilename("relatorio", "xlsx", time.Now()))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
