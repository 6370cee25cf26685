package guide

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
)

// Document is the reference text embedded into every guide prompt.
type Document struct {
	Path   string
	Format string
	Text   string
}

// LoadDocument reads the guide once. Markdown and plain text are kept verbatim;
// HTML and PDF are reduced to their readable text.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read guide document: %w", err)
	}

	doc := Document{Path: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		doc.Format = FormatHTML
		doc.Text, err = htmlText(data, path)
	case ".pdf":
		doc.Format = FormatPDF
		doc.Text, err = pdfText(data)
	case ".txt":
		doc.Format = FormatText
		doc.Text = string(data)
	default:
		doc.Format = FormatMarkdown
		doc.Text = string(data)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("guide document %s is empty", path)
	}
	return doc, nil
}

func htmlText(data []byte, path string) (string, error) {
	base := &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.TextContent), nil
	}

	// Short pages often fail readability's content scoring; fall back to the body text.
	dom, qerr := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if qerr != nil {
		if err != nil {
			return "", err
		}
		return "", qerr
	}
	dom.Find("script, style, noscript").Remove()
	return strings.TrimSpace(dom.Find("body").Text()), nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
