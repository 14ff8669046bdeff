package restapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/athapong/contract-intel/pkg/contract/nlp"
	"github.com/athapong/contract-intel/pkg/contract/parsers"
	"github.com/athapong/contract-intel/pkg/contract/risk"
	"github.com/athapong/contract-intel/pkg/contract/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The route registry is process-global, so every test shares one router.
var (
	routerOnce sync.Once
	testRouter *gin.Engine
)

func router() *gin.Engine {
	routerOnce.Do(func() {
		gin.SetMode(gin.TestMode)

		pipeline := contract.DefaultPipeline(parsers.ForContentType, nlp.NewEngine(), risk.NewAnalyzer())
		server := NewServer(pipeline, storage.NewMemoryReportStore())
		testRouter = server.Router()
	})
	return testRouter
}

func analyzeText(t *testing.T, name, text string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"name": name, "text": text})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestAnalyzeContract(t *testing.T) {
	t.Run("Inline text", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{
			"name": "nda.txt",
			"text": "The receiving party shall not disclose confidential information.",
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "nda.txt", resp["name"])
		assert.NotEmpty(t, resp["id"])
		assert.Contains(t, resp, "composite_score")
		assert.Contains(t, resp, "level")
	})

	t.Run("Multipart file upload", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "lease.txt")
		require.NoError(t, err)
		_, err = fw.Write([]byte("The lessee shall pay rent of Rs. 20,000 with 30 days notice."))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "lease.txt", resp["name"])
	})

	t.Run("Unsupported file extension", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "scan.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("binary"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("Missing body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetContract(t *testing.T) {
	id := analyzeText(t, "vendor.txt", "Acme Ltd shall indemnify and hold harmless the Client.")

	t.Run("Full analysis", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/"+id, nil)
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var analysis contract.Analysis
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
		assert.Equal(t, id, analysis.ID)
		assert.Equal(t, "vendor.txt", analysis.Document.Name)
		assert.NotEmpty(t, analysis.Clauses)
		assert.NotEmpty(t, analysis.Risk.Medium)
	})

	t.Run("Unknown ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/does-not-exist", nil)
		w := httptest.NewRecorder()
		router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListContracts(t *testing.T) {
	id := analyzeText(t, "listing.txt", "The supplier shall deliver goods monthly.")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var summaries []storage.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))

	found := false
	for _, s := range summaries {
		if s.ID == id {
			found = true
			assert.Equal(t, "listing.txt", s.Name)
		}
	}
	assert.True(t, found)
}

func TestGetReport(t *testing.T) {
	id := analyzeText(t, "report.txt", "The vendor shall maintain confidential information securely.")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/"+id+"/report", nil)
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), id+".json")

	var analysis contract.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, id, analysis.ID)
}

func TestGetDashboard(t *testing.T) {
	id := analyzeText(t, "dash.txt", "The contractor accepts unlimited liability for defects.")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/"+id+"/dashboard", nil)
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "dash.txt")
	assert.Contains(t, w.Body.String(), "Contract Risk Dashboard")
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
