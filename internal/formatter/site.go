package formatter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

// Output file names written by [SiteRenderer.Render].
const (
	IndexFile    = "index.html"
	MarkdownFile = "chart.md"
	CSVFile      = "chart.csv"
	JSONFile     = "chart.json"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// RenderHTML executes the page template into w.
func RenderHTML(w io.Writer, page *Page) error {
	if err := indexTemplate.ExecuteTemplate(w, "index.html.tmpl", page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// SiteRenderer writes the chart page and its exports to a directory.
type SiteRenderer struct {
	outputDir string
}

// NewSiteRenderer creates a renderer that writes into outputDir.
func NewSiteRenderer(outputDir string) *SiteRenderer {
	return &SiteRenderer{outputDir: outputDir}
}

// Dir returns the output directory.
func (r *SiteRenderer) Dir() string {
	return r.outputDir
}

// Render writes index.html, chart.md, chart.csv and chart.json and returns their paths.
//
// All outputs are generated before the first file is written.
func (r *SiteRenderer) Render(page *Page) ([]string, error) {
	if page == nil {
		return nil, fmt.Errorf("nil page")
	}

	var html bytes.Buffer
	if err := RenderHTML(&html, page); err != nil {
		return nil, err
	}

	md, err := ExportToMarkdown(page)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	csvData, err := ExportToCSV(page.Entries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	jsonData, err := ExportToJSON(page)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.MkdirAll(r.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	outputs := []struct {
		name string
		data []byte
	}{
		{IndexFile, html.Bytes()},
		{MarkdownFile, md},
		{CSVFile, csvData},
		{JSONFile, jsonData},
	}

	files := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(r.outputDir, o.name)
		if err := os.WriteFile(path, o.data, 0644); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", o.name, err)
		}
		files = append(files, path)
	}

	return files, nil
}
