package parsers

import (
	"path/filepath"
	"strings"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/pkg/errors"
)

// ForContentType returns the parser responsible for the given MIME type.
func ForContentType(contentType string) (contract.DocumentParser, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	for _, parser := range []contract.DocumentParser{
		NewPDFParser(),
		NewDocxParser(),
		NewHTMLParser(),
		NewTextParser(),
	} {
		for _, supported := range parser.SupportedTypes() {
			if supported == ct {
				return parser, nil
			}
		}
	}

	return nil, errors.Errorf("unsupported content type: %s", contentType)
}

// ForFileName maps a file extension to its content type and parser.
func ForFileName(name string) (contract.DocumentParser, string, error) {
	ct := ContentTypeForExtension(filepath.Ext(name))
	if ct == "" {
		return nil, "", errors.Errorf("unsupported file extension: %s", filepath.Ext(name))
	}
	parser, err := ForContentType(ct)
	if err != nil {
		return nil, "", err
	}
	return parser, ct, nil
}

// ContentTypeForExtension returns the MIME type for a supported extension,
// or empty string when the extension is unknown.
func ContentTypeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".html", ".htm":
		return "text/html"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	default:
		return ""
	}
}
