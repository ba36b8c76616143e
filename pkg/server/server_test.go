// licita/pkg/server/server_test.go

package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgehrsitz/licita/pkg/analyzer"
	"rgehrsitz/licita/pkg/document"
	"rgehrsitz/licita/pkg/rules"
)

func newTestServer() *Server {
	return New(Config{Rules: rules.Catalog(), StatsInterval: time.Hour})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func upload(t *testing.T, h http.Handler, field, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := doJSON(t, newTestServer().Routes(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRulesAndCategories(t *testing.T) {
	h := newTestServer().Routes()

	rr := doJSON(t, h, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var cats []rules.CategoryInfo
	decode(t, rr, &cats)
	assert.Len(t, cats, 9)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"pnrs-geral", "mtr", "fispq", "conama-307", "conama-430", "iso-14001"}},
		{"?category=quimicos", []string{"pnrs-geral", "fispq", "iso-14001"}},
		{"?category=ti", []string{"pnrs-geral", "iso-14001"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rr := doJSON(t, h, http.MethodGet, "/api/rules"+tt.query, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			var got []struct {
				ID string `json:"id"`
			}
			decode(t, rr, &got)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	rr = doJSON(t, h, http.MethodGet, "/api/rules?category=espacial", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer()
	h := s.Routes()

	rr := doJSON(t, h, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: "O contratado deve apresentar PGRS e MTR."})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AnalyzeResponse
	decode(t, rr, &resp)
	assert.Equal(t, 40, resp.Report.Score)
	assert.Equal(t, analyzer.SemaphoreYellow, resp.Semaphore)
	assert.Len(t, resp.Report.Findings, 6)
	assert.Empty(t, resp.Suggestion)

	snap := s.Stats().Snapshot()
	assert.EqualValues(t, 1, snap.AnalysesServed)
	require.NotNil(t, snap.LastScore)
	assert.Equal(t, 40, *snap.LastScore)
	assert.Equal(t, analyzer.SemaphoreYellow, snap.LastSemaphore)
}

func TestAnalyzeWithSuggestionAndCategory(t *testing.T) {
	h := newTestServer().Routes()

	rr := doJSON(t, h, http.MethodPost, "/api/analyze", AnalyzeRequest{Text: "Nada relevante.", Category: "quimicos", Suggest: true})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp AnalyzeResponse
	decode(t, rr, &resp)
	assert.Equal(t, 0, resp.Report.Score)
	assert.Equal(t, analyzer.SemaphoreRed, resp.Semaphore)
	assert.Len(t, resp.Report.Findings, 3)
	assert.True(t, strings.HasPrefix(resp.Suggestion, "Itens ausentes ou não identificados:\n"))
}

func TestAnalyzeRejectsUnknownCategory(t *testing.T) {
	s := newTestServer()
	rr := doJSON(t, s.Routes(), http.MethodPost, "/api/analyze", AnalyzeRequest{Text: "x", Category: "espacial"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Categoria desconhecida")
	assert.EqualValues(t, 0, s.Stats().Snapshot().AnalysesServed)
}

func TestExtract(t *testing.T) {
	s := newTestServer()
	h := s.Routes()

	rr := upload(t, h, "file", "edital.txt", []byte("Exige-se FISPQ."))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":"Exige-se FISPQ."}`, rr.Body.String())
	assert.EqualValues(t, 1, s.Stats().Snapshot().DocumentsExtracted)

	rr = upload(t, h, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Arquivo ausente"}`, rr.Body.String())

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	rr = upload(t, h, "file", "imagem.png", png)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Falha ao extrair documento"}`, rr.Body.String())
	assert.EqualValues(t, 1, s.Stats().Snapshot().DocumentsExtracted)
}

func TestJSONBodyWithoutContentType(t *testing.T) {
	h := newTestServer().Routes()
	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := post("/api/analyze", `{"text":"O contratado deve apresentar PGRS e MTR."}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp AnalyzeResponse
	decode(t, rr, &resp)
	assert.Equal(t, 40, resp.Report.Score)

	rr = post("/api/export-docx", `{"title":"Minuta","body":"Exige-se MTR."}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, document.MIMEDOCX, rr.Header().Get("Content-Type"))

	rr = post("/api/clauses", `{"themes":["quimicos"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = post("/api/analyze", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExtractRejectsInflatedDOCX(t *testing.T) {
	s := New(Config{Rules: rules.Catalog(), MaxUploadBytes: 64 << 10, StatsInterval: time.Hour})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		strings.Repeat("MTR ", 256<<10) + `</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	rr := upload(t, s.Routes(), "file", "bomba.docx", buf.Bytes())
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"Arquivo muito grande"}`, rr.Body.String())
	assert.EqualValues(t, 0, s.Stats().Snapshot().DocumentsExtracted)
}

func TestExportDOCXQuotedTitle(t *testing.T) {
	rr := doJSON(t, newTestServer().Routes(), http.MethodPost, "/api/export-docx", ExportRequest{Title: `Edital "Obra" Norte`, Body: "x"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="Edital_Obra_Norte.docx"`, rr.Header().Get("Content-Disposition"))
}

func TestExportDOCX(t *testing.T) {
	s := newTestServer()
	rr := doJSON(t, s.Routes(), http.MethodPost, "/api/export-docx", ExportRequest{Title: "Termo de Referencia", Body: "linha 1\nlinha 2"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, document.MIMEDOCX, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Termo_de_Referencia.docx"`, rr.Header().Get("Content-Disposition"))

	text, err := document.ExtractText("out.docx", rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Termo de Referencia\nlinha 1\nlinha 2", text)
	assert.EqualValues(t, 1, s.Stats().Snapshot().Exports)
}

func TestClauses(t *testing.T) {
	rr := doJSON(t, newTestServer().Routes(), http.MethodPost, "/api/clauses", ClausesRequest{Themes: []string{"residuos"}})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp textResponse
	decode(t, rr, &resp)
	assert.True(t, strings.HasPrefix(resp.Text, "1. Resíduos"))
}

func TestEventsFeed(t *testing.T) {
	s := newTestServer()
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var snap StatsSnapshot
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&snap))
	assert.EqualValues(t, 0, snap.AnalysesServed)
	assert.Nil(t, snap.LastScore)

	require.Eventually(t, func() bool { return s.Hub().ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.Stats().RecordAnalysis(analyzer.Report{Score: 90})
	s.Hub().Broadcast()

	require.NoError(t, conn.ReadJSON(&snap))
	assert.EqualValues(t, 1, snap.AnalysesServed)
	require.NotNil(t, snap.LastScore)
	assert.Equal(t, 90, *snap.LastScore)
	assert.Equal(t, analyzer.SemaphoreGreen, snap.LastSemaphore)
}
