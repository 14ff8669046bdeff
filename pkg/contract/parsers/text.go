package parsers

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// TextParser handles plain-text contracts. Files that are not valid UTF-8
// are decoded as Latin-1 so scanned exports still produce usable text.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(ctx context.Context, content []byte, metadata map[string]interface{}) (*contract.Document, error) {
	var text string
	if utf8.Valid(content) {
		text = string(content)
	} else {
		text = decodeLatin1(content)
	}

	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text file is empty")
	}

	return &contract.Document{
		ID:          uuid.New().String(),
		ContentType: "text/plain",
		Text:        text,
		Sections:    DetectSections(text),
		Metadata:    metadata,
		ParsedAt:    time.Now(),
	}, nil
}

func decodeLatin1(content []byte) string {
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}

func (p *TextParser) SupportedTypes() []string {
	return []string{"text/plain", "text/markdown"}
}
