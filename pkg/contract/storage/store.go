package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/pkg/errors"
)

// Summary is the listing view of a stored analysis.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"composite_score"`
	Level      string    `json:"level"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// ReportStore defines persistence for contract analyses.
type ReportStore interface {
	// Save persists an analysis report.
	Save(ctx context.Context, analysis *contract.Analysis) error

	// Load retrieves an analysis by ID.
	Load(ctx context.Context, id string) (*contract.Analysis, error)

	// List returns summaries of all stored analyses.
	List(ctx context.Context) ([]Summary, error)
}

// JSONReportStore implements ReportStore with one pretty-printed JSON file
// per analysis. The JSON files double as the export format.
type JSONReportStore struct {
	rootDir string
}

// NewJSONReportStore creates a new JSON report store rooted at dir.
func NewJSONReportStore(dir string) *JSONReportStore {
	return &JSONReportStore{
		rootDir: dir,
	}
}

// Save stores the analysis as <root>/<id>.json.
func (s *JSONReportStore) Save(ctx context.Context, analysis *contract.Analysis) error {
	if err := os.MkdirAll(s.rootDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(analysis.ID), data, 0644)
}

// Load reads an analysis from its JSON file.
func (s *JSONReportStore) Load(ctx context.Context, id string) (*contract.Analysis, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, err
	}

	var analysis contract.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, err
	}

	return &analysis, nil
}

// List scans the root directory for stored reports.
func (s *JSONReportStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		analysis, err := s.Load(ctx, strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		summaries = append(summaries, summarize(analysis))
	}

	sortSummaries(summaries)
	return summaries, nil
}

func (s *JSONReportStore) path(id string) string {
	return filepath.Join(s.rootDir, id+".json")
}

// MemoryReportStore implements ReportStore with an in-memory map. Analyses
// live for the duration of the process; it backs the serving surfaces.
type MemoryReportStore struct {
	analyses map[string]*contract.Analysis
	mutex    sync.RWMutex
}

// NewMemoryReportStore creates a new in-memory report store.
func NewMemoryReportStore() *MemoryReportStore {
	return &MemoryReportStore{
		analyses: make(map[string]*contract.Analysis),
	}
}

// Save keeps a copy of the analysis keyed by its ID.
func (s *MemoryReportStore) Save(ctx context.Context, analysis *contract.Analysis) error {
	if analysis == nil || analysis.ID == "" {
		return errors.New("analysis must have an ID")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := *analysis
	s.analyses[analysis.ID] = &stored
	return nil
}

// Load returns the stored analysis for the given ID.
func (s *MemoryReportStore) Load(ctx context.Context, id string) (*contract.Analysis, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	analysis, ok := s.analyses[id]
	if !ok {
		return nil, errors.Errorf("analysis not found: %s", id)
	}

	copied := *analysis
	return &copied, nil
}

// List returns summaries of all stored analyses, newest first.
func (s *MemoryReportStore) List(ctx context.Context) ([]Summary, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summaries := make([]Summary, 0, len(s.analyses))
	for _, analysis := range s.analyses {
		summaries = append(summaries, summarize(analysis))
	}

	sortSummaries(summaries)
	return summaries, nil
}

func summarize(analysis *contract.Analysis) Summary {
	return Summary{
		ID:         analysis.ID,
		Name:       analysis.Document.Name,
		Score:      analysis.Risk.Score,
		Level:      analysis.Risk.Level,
		AnalyzedAt: analysis.AnalyzedAt,
	}
}

func sortSummaries(summaries []Summary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].AnalyzedAt.After(summaries[j].AnalyzedAt)
	})
}
