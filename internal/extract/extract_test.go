package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestTextPlainFile(t *testing.T) {
	path := writeFile(t, "profile.txt", []byte("  Backend   developer\r\n\r\n\r\n\r\nPython,  SQL  "))

	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	want := "Backend developer\n\nPython, SQL"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTextStripsBOM(t *testing.T) {
	path := writeFile(t, "profile.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("perfil")...))

	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "perfil" {
		t.Fatalf("expected BOM to be stripped, got %q", got)
	}
}

func TestTextLatin1Fallback(t *testing.T) {
	// "sênior" encoded as latin-1: ê is a single 0xEA byte, invalid UTF-8.
	path := writeFile(t, "profile.txt", []byte{'s', 0xEA, 'n', 'i', 'o', 'r'})

	got, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "sênior" {
		t.Fatalf("expected latin-1 fallback decode, got %q", got)
	}
}

func TestTextUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "profile.docx", []byte("whatever"))

	_, err := Text(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestTextMissingFile(t *testing.T) {
	if _, err := Text(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestNormalizeCapsLength(t *testing.T) {
	got := Normalize(strings.Repeat("a", maxTextLen+500))
	if len(got) != maxTextLen {
		t.Fatalf("expected the text to be capped at %d, got %d", maxTextLen, len(got))
	}
}
