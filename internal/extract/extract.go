// Package extract pulls plain text out of uploaded résumé files.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeText = "text/plain"
)

// ErrUnsupported is returned for anything other than a PDF or a text file.
var ErrUnsupported = errors.New("Unsupported file type. Please upload a PDF or TXT file.")

// Text extracts the text of a résumé file. The type is taken from the file
// extension and falls back to content sniffing.
func Text(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch detectType(fileName, data) {
	case mimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", fileName, err)
		}
		return strings.TrimSpace(text), nil
	case mimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("extract %s: file is not valid UTF-8 text", fileName)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", ErrUnsupported
	}
}

func detectType(fileName string, data []byte) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return mimePDF
	case ".txt", ".text", ".md":
		return mimeText
	}
	sniffed := http.DetectContentType(data)
	return strings.TrimSpace(strings.Split(sniffed, ";")[0])
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
