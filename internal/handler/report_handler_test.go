package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoPonziani/ExcelUtility/internal/domain"
	"github.com/NicoPonziani/ExcelUtility/internal/handler"
	"github.com/NicoPonziani/ExcelUtility/internal/service"
	"github.com/NicoPonziani/ExcelUtility/pkg/exceltab"
)

type stubService struct {
	filter    domain.ExpenseFilter
	uploaded  []byte
	exportErr error
	importErr error
}

func (s *stubService) ExportWorkbook(_ context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	s.filter = filter
	return []byte("workbook"), s.exportErr
}

func (s *stubService) ExportTemplate(_ context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	s.filter = filter
	return []byte("template"), s.exportErr
}

func (s *stubService) ExportCSV(_ context.Context, filter domain.ExpenseFilter) ([]byte, error) {
	s.filter = filter
	return []byte("a;b\n"), s.exportErr
}

func (s *stubService) Import(_ context.Context, file []byte) (*service.ImportResult, error) {
	s.uploaded = file
	if s.importErr != nil {
		return nil, s.importErr
	}
	return &service.ImportResult{Imported: 2, Rejected: 1, Annotated: []byte("annotated")}, nil
}

func TestReportEndpoints(t *testing.T) {
	e := echo.New()

	t.Run("Workbook Export", func(t *testing.T) {
		stub := &stubService{}
		h := handler.NewReportHandler(stub)
		req := httptest.NewRequest(http.MethodGet, "/reports/expenses.xlsx?region=north&from=01/02/2024", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ExportWorkbookHandler(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "expense_report.xlsx")
			assert.Equal(t, "north", stub.filter.Region)
			assert.Equal(t, 2024, stub.filter.From.Year())
		}
	})

	t.Run("Invalid Date Filter", func(t *testing.T) {
		h := handler.NewReportHandler(&stubService{})
		req := httptest.NewRequest(http.MethodGet, "/reports/expenses.xlsx?from=2024-02-01", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ExportWorkbookHandler(c)) {
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("Empty Export", func(t *testing.T) {
		stub := &stubService{exportErr: &exceltab.ConfigurationError{Reason: "no records supplied"}}
		h := handler.NewReportHandler(stub)
		req := httptest.NewRequest(http.MethodGet, "/reports/expenses/template.xlsx", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ExportTemplateHandler(c)) {
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		}
	})

	t.Run("CSV Export", func(t *testing.T) {
		h := handler.NewReportHandler(&stubService{})
		req := httptest.NewRequest(http.MethodGet, "/reports/expenses.csv", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ExportCSVHandler(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
			assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "expenses.csv")
		}
	})

	t.Run("Import Upload", func(t *testing.T) {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "filled.xlsx")
		require.NoError(t, err)
		_, err = part.Write([]byte("filled"))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		stub := &stubService{}
		h := handler.NewReportHandler(stub)
		req := httptest.NewRequest(http.MethodPost, "/imports/expenses", &body)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ImportHandler(c)) {
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "2", rec.Header().Get("X-Imported-Rows"))
			assert.Equal(t, "1", rec.Header().Get("X-Rejected-Rows"))
			assert.Equal(t, []byte("filled"), stub.uploaded)
			assert.Equal(t, "annotated", rec.Body.String())
		}
	})

	t.Run("Import Missing Column", func(t *testing.T) {
		stub := &stubService{importErr: &exceltab.MissingRequiredColumnError{Title: "Amount"}}
		h := handler.NewReportHandler(stub)
		req := httptest.NewRequest(http.MethodPost, "/imports/expenses", bytes.NewReader([]byte("broken")))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if assert.NoError(t, h.ImportHandler(c)) {
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		}
	})
}
