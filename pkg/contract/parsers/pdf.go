package parsers

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

type PDFParser struct{}

func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

func (p *PDFParser) Parse(ctx context.Context, content []byte, metadata map[string]interface{}) (*contract.Document, error) {
	reader := bytes.NewReader(content)

	r, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF")
	}

	var sb strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text extracted from PDF")
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["pages"] = totalPage

	return &contract.Document{
		ID:          uuid.New().String(),
		ContentType: "application/pdf",
		Text:        text,
		Sections:    DetectSections(text),
		Metadata:    metadata,
		ParsedAt:    time.Now(),
	}, nil
}

func (p *PDFParser) SupportedTypes() []string {
	return []string{"application/pdf"}
}
