// licita/pkg/server/handlers.go

package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/clauses"
	"rgehrsitz/licita/pkg/document"
	"rgehrsitz/licita/pkg/logging"
	"rgehrsitz/licita/pkg/rules"
)

// maxInflation bounds how far an uploaded DOCX may grow once decompressed,
// relative to the upload limit.
const maxInflation = 4

const (
	msgMissingFile   = "Arquivo ausente"
	msgFileTooLarge  = "Arquivo muito grande"
	msgExtractFailed = "Falha ao extrair documento"
	msgExportFailed  = "Falha ao gerar DOCX"
)

type errorResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func checkCategory(category string) error {
	if category == "" {
		return nil
	}
	if _, ok := rules.LookupCategory(category); !ok {
		return fmt.Errorf("Categoria desconhecida: %s", category)
	}
	return nil
}

// decodeJSON reads the body as JSON whatever its Content-Type says, then
// runs the request's own validation.
func decodeJSON(r *http.Request, v render.Binder) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return err
	}
	return v.Bind(r)
}

type AnalyzeRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Suggest  bool   `json:"suggest"`
}

func (a *AnalyzeRequest) Bind(r *http.Request) error {
	a.Category = strings.TrimSpace(a.Category)
	return checkCategory(a.Category)
}

type AnalyzeResponse struct {
	Report     analyzer.Report    `json:"report"`
	Semaphore  analyzer.Semaphore `json:"semaphore"`
	Suggestion string             `json:"suggestion,omitempty"`
}

type ExportRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (e *ExportRequest) Bind(r *http.Request) error {
	return nil
}

type ClausesRequest struct {
	Themes []string `json:"themes"`
}

func (c *ClausesRequest) Bind(r *http.Request) error {
	return nil
}

type textResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if err := checkCategory(category); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	render.JSON(w, r, rules.ForCategory(s.rules, rules.Category(category)))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, rules.Categories())
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report := analyzer.Analyze(req.Text, rules.ForCategory(s.rules, rules.Category(req.Category)))
	s.stats.RecordAnalysis(report)

	resp := AnalyzeResponse{Report: report, Semaphore: report.Semaphore()}
	if req.Suggest {
		resp.Suggestion = clauses.Compose(report)
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderError(w, r, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		renderError(w, r, http.StatusBadRequest, msgMissingFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, msgMissingFile)
		return
	}

	text, err := document.ExtractTextLimit(header.Filename, data, s.maxUploadBytes*maxInflation)
	if err != nil {
		logging.LogError(logging.Logger, err)
		if errors.Is(err, document.ErrDocumentTooLarge) {
			renderError(w, r, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		renderError(w, r, http.StatusInternalServerError, msgExtractFailed)
		return
	}
	s.stats.RecordExtraction()
	render.JSON(w, r, textResponse{Text: text})
}

func (s *Server) handleExportDOCX(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := document.WriteDOCX(&buf, req.Title, req.Body); err != nil {
		logging.LogError(logging.Logger, err)
		renderError(w, r, http.StatusInternalServerError, msgExportFailed)
		return
	}
	s.stats.RecordExport()

	w.Header().Set("Content-Type", document.MIMEDOCX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, document.ExportFilename(req.Title)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Logger.Warn().Err(err).Msg("Failed to send DOCX")
	}
}

func (s *Server) handleClauses(w http.ResponseWriter, r *http.Request) {
	var req ClausesRequest
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	render.JSON(w, r, textResponse{Text: clauses.Generate(req.Themes)})
}
