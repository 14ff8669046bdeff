package parsers

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// HTMLParser extracts the visible body text from HTML contracts.
type HTMLParser struct{}

func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

func (p *HTMLParser) Parse(ctx context.Context, content []byte, metadata map[string]interface{}) (*contract.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML content")
	}

	text := strings.TrimSpace(doc.Find("body").Text())
	if text == "" {
		return nil, errors.New("no text extracted from HTML")
	}

	return &contract.Document{
		ID:          uuid.New().String(),
		ContentType: "text/html",
		Text:        text,
		Sections:    DetectSections(text),
		Metadata:    metadata,
		ParsedAt:    time.Now(),
	}, nil
}

func (p *HTMLParser) SupportedTypes() []string {
	return []string{"text/html"}
}
