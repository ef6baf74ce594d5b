package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/NicoPonziani/ExcelUtility/internal/domain"
	"github.com/NicoPonziani/ExcelUtility/internal/service"
	"github.com/NicoPonziani/ExcelUtility/internal/service/serviceutils"
	"github.com/NicoPonziani/ExcelUtility/pkg/exceltab"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// expenseFilter reads the common listing query parameters. Dates use
// the dd/mm/yyyy form the workbooks themselves carry.
func expenseFilter(c echo.Context) (domain.ExpenseFilter, error) {
	var filter domain.ExpenseFilter
	filter.Region = c.QueryParam("region")
	if raw := c.QueryParam("from"); raw != "" {
		t, err := time.Parse("02/01/2006", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", raw)
		}
		filter.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := time.Parse("02/01/2006", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", raw)
		}
		filter.To = t
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = n
	}
	return filter, nil
}

func (h *ReportHandler) ExportWorkbookHandler(c echo.Context) error {
	filter, err := expenseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}
	data, err := h.svc.ExportWorkbook(c.Request().Context(), filter)
	if err != nil {
		return exportError(c, err)
	}
	return sendWorkbook(c, "expense_report.xlsx", data)
}

func (h *ReportHandler) ExportTemplateHandler(c echo.Context) error {
	filter, err := expenseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}
	data, err := h.svc.ExportTemplate(c.Request().Context(), filter)
	if err != nil {
		return exportError(c, err)
	}
	return sendWorkbook(c, "expense_template.xlsx", data)
}

func (h *ReportHandler) ExportCSVHandler(c echo.Context) error {
	filter, err := expenseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}
	data, err := h.svc.ExportCSV(c.Request().Context(), filter)
	if err != nil {
		return exportError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="expenses.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// ImportHandler accepts a filled-in template, stores the valid rows
// and returns the workbook annotated with each row's outcome.
func (h *ReportHandler) ImportHandler(c echo.Context) error {
	file, err := readUpload(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Failed to read upload", err)
	}
	result, err := h.svc.Import(c.Request().Context(), file)
	if err != nil {
		return importError(c, err)
	}
	c.Response().Header().Set("X-Imported-Rows", strconv.Itoa(result.Imported))
	c.Response().Header().Set("X-Rejected-Rows", strconv.Itoa(result.Rejected))
	return sendWorkbook(c, "expense_import_outcome.xlsx", result.Annotated)
}

// readUpload takes the workbook either from a multipart "file" part or
// from the raw request body.
func readUpload(c echo.Context) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return io.ReadAll(src)
	}
	return io.ReadAll(c.Request().Body)
}

func sendWorkbook(c echo.Context, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, contentTypeXLSX, data)
}

func exportError(c echo.Context, err error) error {
	var cfgErr *exceltab.ConfigurationError
	if errors.As(err, &cfgErr) {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Nothing to export", err)
	}
	return serviceutils.ResponseError(c, http.StatusInternalServerError, "Export failed", err)
}

func importError(c echo.Context, err error) error {
	var missingCol *exceltab.MissingRequiredColumnError
	var missingVal *exceltab.MissingRequiredValueError
	var coercion *exceltab.CellCoercionError
	if errors.As(err, &missingCol) || errors.As(err, &missingVal) || errors.As(err, &coercion) {
		return serviceutils.ResponseError(c, http.StatusUnprocessableEntity, "Workbook rejected", err)
	}
	return serviceutils.ResponseError(c, http.StatusInternalServerError, "Import failed", err)
}
