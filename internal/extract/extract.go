// Package extract turns candidate profile files into plain text suitable
// for ranking.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnsupportedFormat is returned for file extensions the extractor does
// not understand.
var ErrUnsupportedFormat = errors.New("unsupported profile format")

// maxTextLen caps the extracted text so one pathological file cannot blow
// up the vectorizer.
const maxTextLen = 600_000

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n{3,}`)
)

// Text reads the profile file and returns its normalized plain text.
// Supported formats are .txt and .pdf, chosen by extension.
func Text(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return textFile(path)
	case ".pdf":
		return pdfFile(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func textFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading profile: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	text := string(data)
	if !utf8.ValidString(text) {
		// Legacy exports are usually latin-1; the decode cannot fail.
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding profile: %w", err)
		}
		text = string(decoded)
	}

	return Normalize(text), nil
}

func pdfFile(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	return Normalize(buf.String()), nil
}

// Normalize collapses runs of spaces and tabs, squeezes blank-line runs
// down to one blank line, normalizes line endings and trims the result.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if len(text) > maxTextLen {
		text = text[:maxTextLen]
		// Never cut a rune in half.
		for len(text) > 0 && !utf8.ValidString(text) {
			text = text[:len(text)-1]
		}
	}

	return text
}
