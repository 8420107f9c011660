package report

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/FranksOps/quarry/internal/storage"
)

// Summary contains aggregated metrics about a batch of stored search results.
type Summary struct {
	TotalResults int
	UniqueURLs   int
	Queries      map[string]int
	Domains      map[string]int
	Sessions     map[string]int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// GenerateSummary processes a slice of search records to generate summary metrics.
func GenerateSummary(records []*storage.Record) Summary {
	s := Summary{
		Queries:  make(map[string]int),
		Domains:  make(map[string]int),
		Sessions: make(map[string]int),
	}

	if len(records) == 0 {
		return s
	}

	s.StartTime = records[0].CreatedAt
	s.EndTime = records[0].CreatedAt

	seen := make(map[string]struct{})
	for _, r := range records {
		s.TotalResults++
		if _, dup := seen[r.URL]; !dup {
			seen[r.URL] = struct{}{}
			s.UniqueURLs++
		}
		if r.Query != "" {
			s.Queries[r.Query]++
		}
		if r.SessionID != "" {
			s.Sessions[r.SessionID]++
		}
		if d := domainOf(r.URL); d != "" {
			s.Domains[d]++
		}

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// domainOf extracts the lowercase host from a result URL, empty if unparseable.
func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Quarry Search Summary
---------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Total Results: {{.TotalResults}}
Unique URLs:   {{.UniqueURLs}}

Queries:
{{- range $query, $count := .Queries}}
  {{$query}}: {{$count}}
{{- else}}
  None
{{- end}}

Domains:
{{- range $domain, $count := .Domains}}
  {{$domain}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render text report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Quarry Search Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Quarry Search Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Total Results</div>
    <div class="stat-val">{{.TotalResults}}</div>
  </div>
  <div class="stat-card">
    <div>Unique URLs</div>
    <div class="stat-val">{{.UniqueURLs}}</div>
  </div>
  <div class="stat-card">
    <div>Queries</div>
    <div class="stat-val">{{len .Queries}}</div>
  </div>
  <div class="stat-card">
    <div>Sessions</div>
    <div class="stat-val">{{len .Sessions}}</div>
  </div>

  <h3>Results Per Query</h3>
  <table>
    <tr><th>Query</th><th>Count</th></tr>
    {{- range $query, $count := .Queries}}
    <tr><td>{{$query}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Results Per Domain</h3>
  <table>
    <tr><th>Domain</th><th>Count</th></tr>
    {{- range $domain, $count := .Domains}}
    <tr><td>{{$domain}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`

	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}

	return nil
}
