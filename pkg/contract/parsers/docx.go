package parsers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DocxParser extracts paragraph text from Word documents. A DOCX file is a
// zip archive whose main body lives in word/document.xml.
type DocxParser struct{}

func NewDocxParser() *DocxParser {
	return &DocxParser{}
}

func (p *DocxParser) Parse(ctx context.Context, content []byte, metadata map[string]interface{}) (*contract.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open DOCX archive")
	}

	var body io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return nil, errors.Wrap(err, "failed to open document body")
			}
			break
		}
	}
	if body == nil {
		return nil, errors.New("word/document.xml not found in archive")
	}
	defer body.Close()

	paragraphs, err := extractParagraphs(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode document body")
	}

	text := strings.Join(paragraphs, "\n\n")
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no text extracted from DOCX")
	}

	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	metadata["paragraphs"] = len(paragraphs)

	return &contract.Document{
		ID:          uuid.New().String(),
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Text:        text,
		Sections:    DetectSections(text),
		Metadata:    metadata,
		ParsedAt:    time.Now(),
	}, nil
}

// extractParagraphs walks the WordprocessingML token stream collecting text
// runs (w:t) and closing a paragraph at each w:p end element.
func extractParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}

	return paragraphs, nil
}

func (p *DocxParser) SupportedTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}
