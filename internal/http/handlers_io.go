package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pennie/internal/core"
	"pennie/internal/ledger"
	"pennie/internal/log"
)

// handleImport accepts a CSV either as the "file" part of a multipart form
// or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}

	var body io.Reader = r.Body
	if contentTypeIs(r, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.writeError(w, r, tooLarge)
				return
			}
			BadRequestError("multipart upload must include a 'file' part").Write(w)
			return
		}
		defer file.Close()
		body = file
	}

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentLedger)
	onProgress := func(rowsRead, imported int) {
		logger.DebugContext(r.Context(), "Import progress", "rows_read", rowsRead, "imported", imported)
	}

	report, err := s.svc.ImportCSV(r.Context(), body, onProgress)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logger.InfoContext(r.Context(), "CSV import finished",
		log.FieldOperation, log.OpImport,
		"batch_id", report.BatchID,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"auto_categorized", report.AutoCategorized,
		"cancelled", report.Cancelled)

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv; charset=utf-8", s.svc.ExportCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", s.svc.ExportXLSX)
}

// export renders the filtered ledger into memory first so a failure can
// still produce an error status.
func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, ledger.Filters) error) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, ledger.ParseFilters(r.URL.Query())); err != nil {
		s.writeError(w, r, fmt.Errorf("export %s: %w", ext, err))
		return
	}

	filename := fmt.Sprintf("pennie-transactions-%s.%s", time.Now().Format(core.DateLayout), ext)
	NewResponse().
		Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename)).
		Body(buf.Bytes(), contentType).
		Write(w)
}
