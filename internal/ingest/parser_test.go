package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dnchinmayee/Text-retriving/internal/tokenize"
)

func TestParseDOCX(t *testing.T) {
	raw := buildDOCX(t, `<w:document><w:body><w:p><w:r><w:t>Chapter 1</w:t></w:r></w:p><w:p><w:r><w:t>Hello world.</w:t></w:r></w:p></w:body></w:document>`)
	got, err := Parse("annual.docx", "", raw)
	if err != nil {
		t.Fatalf("parse docx failed: %v", err)
	}
	if got.Text != "Chapter 1\nHello world." {
		t.Fatalf("unexpected text %q", got.Text)
	}
	if got.Title != "annual" {
		t.Fatalf("unexpected title %q", got.Title)
	}
}

func TestParseHTMLSkipsHiddenElements(t *testing.T) {
	raw := []byte(`<html><head><title>Report</title><style>p{color:red}</style>` +
		`<script>var x = "hidden";</script></head><body><p>Net income &amp; revenue   rose.</p>` +
		`<div>Risk factors</div><template><p>draft</p></template></body></html>`)
	got, err := Parse("https://www.sec.gov/Archives/edgar/data/1/report.htm", "text/html", raw)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	want := "ReportNet income & revenue rose.Risk factors"
	if got.Text != want {
		t.Fatalf("expected %q, got %q", want, got.Text)
	}
}

func TestParseMarkupJoinsAdjacentElements(t *testing.T) {
	tests := []struct {
		raw       string
		text      string
		sentences int
	}{
		{raw: "<p>End.</p><p>Next</p>", text: "End.Next", sentences: 1},
		{raw: "<p>End.</p>\n<p>Next</p>", text: "End.\nNext", sentences: 2},
		{raw: "<td>Revenue</td> <td>grew.</td>", text: "Revenue grew.", sentences: 1},
	}
	for _, tt := range tests {
		got, err := Parse("filing.htm", "text/html", []byte(tt.raw))
		if err != nil {
			t.Fatalf("parse %q: %v", tt.raw, err)
		}
		if got.Text != tt.text {
			t.Fatalf("expected %q, got %q", tt.text, got.Text)
		}
		if n := tokenize.CountSentences(got.Text); n != tt.sentences {
			t.Fatalf("%q: expected %d sentences, got %d", tt.raw, tt.sentences, n)
		}
	}
}

func TestParseMarkupCharset(t *testing.T) {
	raw := []byte("<p>Caf\xe9 sales</p>")
	got, err := Parse("filing.htm", "text/html; charset=iso-8859-1", raw)
	if err != nil {
		t.Fatalf("parse latin-1: %v", err)
	}
	if got.Text != "Café sales" {
		t.Fatalf("unexpected text %q", got.Text)
	}
}

func TestParseEDGARSubmission(t *testing.T) {
	raw := []byte("<SEC-DOCUMENT>0000950170-98-000413.txt\n<DOCUMENT>\n<TYPE>10-K405\n<TEXT>\nItem 1.  Business\nThe Company sells appliances.\n</TEXT>\n</DOCUMENT>\n</SEC-DOCUMENT>\n")
	got, err := Parse("edgar/data/3662/0000950170-98-000413.txt", "text/plain", raw)
	if err != nil {
		t.Fatalf("parse submission: %v", err)
	}
	for _, want := range []string{"10-K405", "Item 1. Business", "The Company sells appliances."} {
		if !strings.Contains(got.Text, want) {
			t.Fatalf("expected %q in %q", want, got.Text)
		}
	}
}

func TestParseMarkdown(t *testing.T) {
	raw := []byte("# Outlook\n\nFirst line\nsecond line.\n\nSome *bold* claims.\n\n```\ncode here\n```\n")
	got, err := Parse("notes.md", "", raw)
	if err != nil {
		t.Fatalf("parse markdown: %v", err)
	}
	lines := strings.Split(got.Text, "\n")
	if lines[0] != "Outlook" || lines[1] != "First line second line." {
		t.Fatalf("unexpected markdown text %q", got.Text)
	}
	for _, want := range []string{"bold", "claims.", "code here"} {
		if !strings.Contains(got.Text, want) {
			t.Fatalf("expected %q in %q", want, got.Text)
		}
	}
	if strings.Contains(got.Text, "#") || strings.Contains(got.Text, "*") || strings.Contains(got.Text, "```") {
		t.Fatalf("markup leaked into %q", got.Text)
	}
}

func TestParseInvalidPDF(t *testing.T) {
	if _, err := Parse("report.pdf?download=1", "", []byte("not a pdf")); err == nil {
		t.Fatal("expected pdf error")
	}
	if _, err := Parse("report", "application/pdf", []byte("not a pdf")); err == nil {
		t.Fatal("expected content-type dispatch to pdf")
	}
}

func TestParseFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.png")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	_, err := ParseFile(path)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
}

func TestParseFileSetsSourcePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filing.txt")
	if err := os.WriteFile(path, []byte("Revenue grew.\n\n  Costs   fell."), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	parsed, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if parsed.SourcePath != path || parsed.Text != "Revenue grew.\nCosts fell." {
		t.Fatalf("unexpected parse result %+v", parsed)
	}
}

func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	xml := `<?xml version="1.0" encoding="UTF-8"?>` + bodyXML
	if _, err := f.Write([]byte(xml)); err != nil {
		t.Fatalf("write xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return b.Bytes()
}
