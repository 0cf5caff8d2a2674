package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

var ErrUnsupported = errors.New("unsupported file type")

// Parsed is the plain text extracted from one filing.
type Parsed struct {
	Title      string
	SourcePath string
	Text       string
}

type format int

const (
	formatMarkup format = iota
	formatPDF
	formatDOCX
	formatMarkdown
)

var binaryExts = map[string]bool{
	".zip": true, ".gz": true, ".xls": true, ".xlsx": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

func ParseFile(path string) (*Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	parsed, err := Parse(path, "", raw)
	if err != nil {
		return nil, err
	}
	parsed.SourcePath = path
	return parsed, nil
}

// Parse extracts text from raw. The format comes from name's extension and
// falls back to contentType; anything unrecognised is read as HTML/SGML,
// which also covers plain-text EDGAR submissions.
func Parse(name, contentType string, raw []byte) (*Parsed, error) {
	f, err := detect(name, contentType)
	if err != nil {
		return nil, err
	}

	var body string
	switch f {
	case formatDOCX:
		body, err = parseDOCX(raw)
	case formatPDF:
		body, err = parsePDF(raw)
	case formatMarkdown:
		body = parseMarkdown(raw)
	default:
		body, err = parseMarkup(raw, contentType)
	}
	if err != nil {
		return nil, err
	}

	return &Parsed{
		Title:      title(name),
		SourcePath: name,
		Text:       normalizeWhitespace(body),
	}, nil
}

func detect(name, contentType string) (format, error) {
	ext := strings.ToLower(path.Ext(stripQuery(name)))
	switch ext {
	case ".docx":
		return formatDOCX, nil
	case ".pdf":
		return formatPDF, nil
	case ".md", ".markdown":
		return formatMarkdown, nil
	}
	if binaryExts[ext] {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/pdf":
		return formatPDF, nil
	case "text/markdown":
		return formatMarkdown, nil
	}
	return formatMarkup, nil
}

func stripQuery(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		return name[:i]
	}
	return name
}

func title(name string) string {
	base := filepath.Base(stripQuery(name))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("open document.xml: %w", openErr)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", fmt.Errorf("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func parsePDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no extractable text found in pdf")
	}
	return b.String(), nil
}

func parseMarkdown(raw []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(raw))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(raw))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(raw))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(raw))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// Elements whose text is never part of the visible document.
var hiddenElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// parseMarkup returns the visible text of an HTML or SGML document. Text
// nodes are joined as they appear; tags add no separators, so only the
// whitespace in the source separates adjacent elements.
func parseMarkup(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}

	z := html.NewTokenizer(r)
	var b strings.Builder
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", fmt.Errorf("tokenize markup: %w", z.Err())
		case html.StartTagToken:
			name, _ := z.TagName()
			if hiddenElements[string(name)] {
				hidden++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if hiddenElements[string(name)] && hidden > 0 {
				hidden--
			}
		case html.TextToken:
			if hidden == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.Join(strings.Fields(line), " ")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
