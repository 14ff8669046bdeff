package contract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	pipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_analysis_duration_seconds",
			Help: "Time spent analyzing contracts in the pipeline",
		},
		[]string{"status"},
	)

	contractsAnalyzedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_contracts_analyzed_total",
			Help: "Total number of contracts analyzed",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(pipelineDuration)
	prometheus.MustRegister(contractsAnalyzedTotal)
}

// ParserSelector picks a DocumentParser for a content type.
type ParserSelector func(contentType string) (DocumentParser, error)

// AnalysisPipeline parses a contract and runs it through all analyzers.
type AnalysisPipeline struct {
	selectParser ParserSelector
	analyzers    []Analyzer
	mutex        sync.RWMutex
	logger       *logrus.Logger
	batchSize    int
}

// NewPipeline creates a new contract analysis pipeline.
func NewPipeline(selectParser ParserSelector) *AnalysisPipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &AnalysisPipeline{
		selectParser: selectParser,
		analyzers:    make([]Analyzer, 0),
		batchSize:    10,
		logger:       logger,
	}
}

// AddAnalyzer adds an analyzer to the pipeline.
func (p *AnalysisPipeline) AddAnalyzer(analyzer Analyzer) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.analyzers = append(p.analyzers, analyzer)
}

// Analyze parses the raw document and runs every analyzer over it.
func (p *AnalysisPipeline) Analyze(ctx context.Context, name, contentType string, content []byte) (*Analysis, error) {
	if len(content) == 0 {
		return nil, errors.New("cannot analyze empty document")
	}

	p.mutex.RLock()
	analyzerCount := len(p.analyzers)
	p.mutex.RUnlock()

	if analyzerCount == 0 {
		return nil, errors.New("no analyzers configured in pipeline")
	}

	timer := prometheus.NewTimer(pipelineDuration.WithLabelValues("single"))
	defer timer.ObserveDuration()

	parser, err := p.selectParser(contentType)
	if err != nil {
		contractsAnalyzedTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	doc, err := parser.Parse(ctx, content, nil)
	if err != nil {
		contractsAnalyzedTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	doc.Name = name

	p.logger.WithFields(logrus.Fields{
		"doc_id":       doc.ID,
		"name":         name,
		"content_type": contentType,
		"text_length":  len(doc.Text),
	}).Info("Analyzing contract")

	analysis := &Analysis{
		ID:       uuid.New().String(),
		Document: *doc,
	}

	p.mutex.RLock()
	analyzers := make([]Analyzer, len(p.analyzers))
	copy(analyzers, p.analyzers)
	p.mutex.RUnlock()

	for _, analyzer := range analyzers {
		if err := analyzer.Analyze(ctx, doc, analysis); err != nil {
			contractsAnalyzedTotal.WithLabelValues("error").Inc()
			return nil, errors.Wrapf(err, "analyzer failed for %s", name)
		}
	}

	analysis.AnalyzedAt = time.Now()
	contractsAnalyzedTotal.WithLabelValues("success").Inc()

	p.logger.WithField("analysis_id", analysis.ID).Info("Contract analysis completed")
	return analysis, nil
}

// Input is one raw contract handed to BatchAnalyze.
type Input struct {
	Name        string
	ContentType string
	Content     []byte
}

// BatchAnalyze analyzes multiple contracts concurrently in fixed-size
// batches. The first analyzer error aborts the run.
func (p *AnalysisPipeline) BatchAnalyze(ctx context.Context, inputs []Input) ([]*Analysis, error) {
	p.logger.WithField("contract_count", len(inputs)).Info("Starting batch analysis")

	results := make([]*Analysis, len(inputs))

	for i := 0; i < len(inputs); i += p.batchSize {
		end := i + p.batchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		batch := inputs[i:end]
		errs := make(chan error, len(batch))
		var wg sync.WaitGroup

		for j, input := range batch {
			wg.Add(1)
			go func(idx int, in Input) {
				defer wg.Done()

				analysis, err := p.Analyze(ctx, in.Name, in.ContentType, in.Content)
				if err != nil {
					p.logger.WithError(err).WithField("name", in.Name).Error("Failed to analyze contract")
					errs <- err
					return
				}
				results[idx] = analysis
			}(i+j, input)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				return nil, errors.Wrap(err, "batch analysis failed")
			}
		}
	}

	p.logger.Info("Batch analysis completed successfully")
	return results, nil
}

// DefaultPipeline wires the standard analyzer chain used by the serving
// surfaces and the CLI.
func DefaultPipeline(selectParser ParserSelector, analyzers ...Analyzer) *AnalysisPipeline {
	pipeline := NewPipeline(selectParser)
	for _, analyzer := range analyzers {
		pipeline.AddAnalyzer(analyzer)
	}
	return pipeline
}
