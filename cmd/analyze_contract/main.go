package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/athapong/contract-intel/pkg/contract/nlp"
	"github.com/athapong/contract-intel/pkg/contract/parsers"
	"github.com/athapong/contract-intel/pkg/contract/risk"
	"github.com/athapong/contract-intel/pkg/contract/storage"
	"github.com/athapong/contract-intel/pkg/contract/visualizer"
	"github.com/sirupsen/logrus"
)

var (
	inputPath = flag.String("input", "", "Contract file or directory of contracts to analyze")
	outputDir = flag.String("output", "reports", "Directory for JSON analysis reports")
	dashboard = flag.Bool("dashboard", false, "Also generate an HTML dashboard per contract")
	logLevel  = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if *inputPath == "" {
		logger.Fatal("Input file or directory must be specified")
	}

	pipeline := contract.DefaultPipeline(
		parsers.ForContentType,
		nlp.NewEngine(),
		risk.NewAnalyzer(),
	)
	store := storage.NewJSONReportStore(*outputDir)

	files, err := collectInputFiles(*inputPath)
	if err != nil {
		logger.Fatalf("Failed to read input path: %v", err)
	}

	if len(files) == 0 {
		logger.Fatal("No supported contract files found")
	}

	logger.Infof("Analyzing %d contract files...", len(files))

	inputs := make([]contract.Input, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Errorf("Failed to read file %s: %v", file, err)
			continue
		}

		_, contentType, err := parsers.ForFileName(file)
		if err != nil {
			logger.Errorf("Skipping %s: %v", file, err)
			continue
		}

		inputs = append(inputs, contract.Input{
			Name:        filepath.Base(file),
			ContentType: contentType,
			Content:     content,
		})
	}

	ctx := context.Background()
	analyses, err := pipeline.BatchAnalyze(ctx, inputs)
	if err != nil {
		logger.Fatalf("Failed to analyze contracts: %v", err)
	}

	for _, analysis := range analyses {
		if err := store.Save(ctx, analysis); err != nil {
			logger.Errorf("Failed to store analysis %s: %v", analysis.ID, err)
			continue
		}

		logger.Infof("%s: score %d/100 (%s), %d entities, %d clauses",
			analysis.Document.Name, analysis.Risk.Score, analysis.Risk.Level,
			len(analysis.Entities), len(analysis.Clauses))

		if *dashboard {
			htmlPath := filepath.Join(*outputDir, analysis.ID+".html")
			viz := visualizer.NewHTMLVisualizer(htmlPath)
			if err := viz.Visualize(analysis); err != nil {
				logger.Errorf("Failed to write dashboard for %s: %v", analysis.ID, err)
			} else {
				logger.Infof("Dashboard saved to %s", htmlPath)
			}
		}
	}

	logger.Infof("Reports saved to %s", *outputDir)
}

// collectInputFiles lists all supported contract files under the path.
func collectInputFiles(inputPath string) ([]string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{inputPath}, nil
	}

	var files []string
	err = filepath.Walk(inputPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && parsers.ContentTypeForExtension(filepath.Ext(path)) != "" {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
