// Package restapi surfaces contract analysis over HTTP. Upload a contract,
// get back the analysis ID, then pull the JSON report or the HTML dashboard.
package restapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/athapong/contract-intel/pkg/contract/metrics"
	"github.com/athapong/contract-intel/pkg/contract/parsers"
	"github.com/athapong/contract-intel/pkg/contract/storage"
	"github.com/athapong/contract-intel/pkg/contract/visualizer"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxUploadBytes = 32 << 20

// Server holds the pipeline and store behind the REST handlers.
type Server struct {
	pipeline *contract.AnalysisPipeline
	store    storage.ReportStore
}

// NewServer wires the REST surface to a pipeline and report store.
func NewServer(pipeline *contract.AnalysisPipeline, store storage.ReportStore) *Server {
	return &Server{
		pipeline: pipeline,
		store:    store,
	}
}

// Router builds the gin engine with all contract routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()

	RegisterMethod(POST, "/contracts", s.analyzeContract)
	RegisterMethod(GET, "/contracts", s.listContracts)
	RegisterMethod(GET, "/contracts/:id", s.getContract)
	RegisterMethod(GET, "/contracts/:id/report", s.getReport)
	RegisterMethod(GET, "/contracts/:id/dashboard", s.getDashboard)

	v1 := router.Group("/api/v1")
	{
		for _, rm := range RestMethods() {
			switch rm.Verb {
			case GET:
				v1.GET(rm.Path, rm.Handler)
			case DELETE:
				v1.DELETE(rm.Path, rm.Handler)
			case POST:
				v1.POST(rm.Path, rm.Handler)
			default:
				panic(fmt.Sprintf("HTTP verb %d not supported", rm.Verb))
			}
		}
	}

	metricsHandler := gin.WrapH(promhttp.Handler())
	router.GET("/metrics", func(c *gin.Context) {
		metrics.UpdateSystemMetrics()
		metricsHandler(c)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// analyzeRequest is the JSON body accepted when no file is uploaded.
type analyzeRequest struct {
	Name string `json:"name"`
	Text string `json:"text" binding:"required"`
}

// analyzeContract accepts a multipart file upload (field "file") or a JSON
// body with inline text, runs the pipeline and stores the result.
func (s *Server) analyzeContract(c *gin.Context) {
	var name, contentType string
	var content []byte

	if file, err := c.FormFile("file"); err == nil {
		if file.Size > maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}

		_, ct, err := parsers.ForFileName(file.Filename)
		if err != nil {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
			return
		}

		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
			return
		}
		defer f.Close()

		content, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}
		name, contentType = file.Filename, ct
	} else {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide a file upload or a JSON body with text"})
			return
		}
		name, contentType, content = req.Name, "text/plain", []byte(req.Text)
		if name == "" {
			name = "inline"
		}
	}

	analysis, err := s.pipeline.Analyze(c.Request.Context(), name, contentType, content)
	if err != nil {
		metrics.ParseErrors.WithLabelValues(contentType).Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Save(c.Request.Context(), analysis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.RiskScoreDistribution.Observe(float64(analysis.Risk.Score))

	c.JSON(http.StatusCreated, gin.H{
		"id":              analysis.ID,
		"name":            analysis.Document.Name,
		"composite_score": analysis.Risk.Score,
		"level":           analysis.Risk.Level,
	})
}

func (s *Server) listContracts(c *gin.Context) {
	summaries, err := s.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.StoredAnalyses.Set(float64(len(summaries)))
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getContract(c *gin.Context) {
	analysis, ok := s.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// getReport serves the analysis as a downloadable JSON export.
func (s *Server) getReport(c *gin.Context) {
	analysis, ok := s.load(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", analysis.ID))
	c.IndentedJSON(http.StatusOK, analysis)
}

func (s *Server) getDashboard(c *gin.Context) {
	analysis, ok := s.load(c)
	if !ok {
		return
	}

	html, err := visualizer.Render(analysis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) load(c *gin.Context) (*contract.Analysis, bool) {
	analysis, err := s.store.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return nil, false
	}
	return analysis, true
}
