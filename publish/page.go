package publish

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// reportsMarker is the placeholder in the landing page template that gets
// replaced with the published report data.
const reportsMarker = "const reports = [];"

// landingTemplate is the GitHub Pages landing page. The page lists the
// published reports client-side from the embedded JSON.
const landingTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Adam Sandler News Reports</title>
  <style>
    body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
    .header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
    .report-item { background-color: white; margin-bottom: 10px; padding: 15px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
    .report-item a { color: #2c3e50; font-size: 16px; font-weight: bold; text-decoration: none; }
    .report-item a:hover { color: #3498db; }
    .report-meta { color: #7f8c8d; font-size: 13px; margin-top: 5px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Adam Sandler News Reports</h1>
    <p>Automatically generated news reports, newest first.</p>
  </div>
  <div id="reports"></div>
  <script>
    const reports = [];
    const container = document.getElementById("reports");
    if (reports.length === 0) {
      container.innerHTML = "<p>No reports published yet.</p>";
    }
    for (const report of reports) {
      const item = document.createElement("div");
      item.className = "report-item";
      item.innerHTML =
        '<a href="' + report.filename + '">' + report.title + "</a>" +
        '<div class="report-meta">' + report.generated_at + " &middot; " +
        report.news_count + " articles</div>";
      container.appendChild(item);
    }
  </script>
</body>
</html>
`

// writeLandingPage regenerates index.html from the template with the current
// index embedded. Regenerating rather than patching keeps the page correct
// across repeated publishes.
func (p *Publisher) writeLandingPage(entries []IndexEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal reports for landing page: %w", err)
	}

	page := strings.Replace(landingTemplate, reportsMarker,
		"const reports = "+string(data)+";", 1)

	path := filepath.Join(p.config.DocsDir, "index.html")
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		return fmt.Errorf("failed to write landing page: %w", err)
	}
	return nil
}
