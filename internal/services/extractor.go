package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// FileKind is the supported resume file format, resolved once from the
// uploaded filename's extension.
type FileKind string

const (
	FileKindPDF  FileKind = "pdf"
	FileKindDOCX FileKind = "docx"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrCannotProcessFile wraps any parse failure. Extraction has no
	// partial-result recovery.
	ErrCannotProcessFile = errors.New("could not process file")
)

type TextExtractor interface {
	ExtractText(data []byte, kind FileKind) (string, error)
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

// ResolveFileKind determines the file kind from the filename extension,
// case-insensitively.
func ResolveFileKind(filename string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF, nil
	case ".docx":
		return FileKindDOCX, nil
	default:
		return "", ErrUnsupportedFileType
	}
}

// ExtractText implements TextExtractor.
func (e *textExtractor) ExtractText(data []byte, kind FileKind) (string, error) {
	switch kind {
	case FileKindPDF:
		return e.extractPDF(data)
	case FileKindDOCX:
		return e.extractDOCX(data)
	default:
		return "", ErrUnsupportedFileType
	}
}

func (e *textExtractor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", ErrCannotProcessFile, err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: failed to read PDF page %d: %v", ErrCannotProcessFile, pageIndex, err)
		}

		textBuilder.WriteString(text)
	}

	return textBuilder.String(), nil
}

var docxTagPattern = regexp.MustCompile(`<[^>]*>`)

func (e *textExtractor) extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open DOCX: %v", ErrCannotProcessFile, err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()

	// Paragraph boundaries become newlines, everything else is markup.
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = docxTagPattern.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	var paragraphs []string
	for _, line := range strings.Split(content, "\n") {
		paragraphs = append(paragraphs, strings.TrimRight(line, " \t"))
	}

	return strings.TrimRight(strings.Join(paragraphs, "\n"), "\n"), nil
}
