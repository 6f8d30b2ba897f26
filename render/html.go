// ABOUTME: HTML report generation from description entries.
// ABOUTME: Description text runs through goldmark so providers that answer in Markdown render cleanly.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mediascribe/mediascribe/describe"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Image Descriptions</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 900px; margin: 2rem auto; padding: 0 1rem; color: #222; }
header { border-bottom: 2px solid #ddd; margin-bottom: 1.5rem; padding-bottom: 0.5rem; }
.meta { color: #666; font-size: 0.9rem; }
article { border: 1px solid #e0e0e0; border-radius: 8px; padding: 1rem 1.25rem; margin-bottom: 1rem; }
article h2 { font-size: 1rem; margin: 0 0 0.25rem; word-break: break-all; }
article img { max-width: 100%; border-radius: 4px; margin: 0.5rem 0; }
.desc { line-height: 1.5; }
</style>
</head>
<body>
<header>
<h1>Image Descriptions</h1>
<p class="meta">{{.Count}} images &middot; generated {{.Generated}}</p>
</header>
{{range .Items}}<article>
<h2>{{.Name}}</h2>
<p class="meta">{{.Provider}} / {{.Model}} &middot; {{.Style}} &middot; {{.Time}}</p>
<img src="{{.ImageSrc}}" alt="{{.Name}}" loading="lazy">
<div class="desc">{{.Description}}</div>
</article>
{{end}}</body>
</html>
`

type reportItem struct {
	Name        string
	Provider    string
	Model       string
	Style       string
	Time        string
	ImageSrc    template.URL
	Description template.HTML
}

type reportData struct {
	Count     int
	Generated string
	Items     []reportItem
}

// WriteReport renders all entries into a standalone HTML report at outPath.
// Images are referenced by file path, so the report works when opened locally.
func WriteReport(outPath string, entries []describe.Entry) error {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	data := reportData{
		Count:     len(entries),
		Generated: time.Now().Format("2006-01-02 15:04"),
	}
	for _, e := range entries {
		var buf bytes.Buffer
		if err := md.Convert([]byte(e.Text), &buf); err != nil {
			return fmt.Errorf("render description for %s: %w", e.Path, err)
		}
		data.Items = append(data.Items, reportItem{
			Name:        filepath.Base(e.Path),
			Provider:    e.Provider,
			Model:       e.Model,
			Style:       e.Style,
			Time:        e.Time.Format("2006-01-02 15:04"),
			// Paths come from our own scanner, never user input, so the
			// file:// scheme is safe to mark trusted.
			ImageSrc:    template.URL("file://" + e.Path),
			Description: template.HTML(buf.String()),
		})
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
