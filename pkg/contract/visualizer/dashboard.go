package visualizer

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/athapong/contract-intel/pkg/contract"
)

// The HTML template for the contract risk dashboard.
const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Contract Risk Dashboard</title>
    <script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>
    <style>
        body {
            margin: 0;
            font-family: Arial, sans-serif;
            background-color: #f5f5f5;
        }
        .header {
            background-color: #1e3a8a;
            color: white;
            padding: 16px 24px;
        }
        .container {
            display: flex;
            flex-wrap: wrap;
            padding: 16px;
            gap: 16px;
        }
        .card {
            background: white;
            border-radius: 8px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
            padding: 16px;
            flex: 1 1 320px;
        }
        .risk-high { color: #991b1b; background: #fee2e2; padding: 10px; border-radius: 5px; }
        .risk-medium { color: #92400e; background: #fef3c7; padding: 10px; border-radius: 5px; }
        .risk-low { color: #065f46; background: #d1fae5; padding: 10px; border-radius: 5px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; border-bottom: 1px solid #e5e7eb; padding: 6px 8px; font-size: 13px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Name}}</h1>
        <p>Analyzed {{.AnalyzedAt}} | {{.EntityCount}} entities, {{.ClauseCount}} clauses, {{.FindingCount}} risk findings</p>
    </div>
    <div class="container">
        <div class="card">
            <div id="gauge"></div>
            <div class="risk-{{.LevelClass}}"><strong>{{.Level}}</strong>: {{.Recommendation}}</div>
        </div>
        <div class="card">
            <div id="severity"></div>
        </div>
        <div class="card">
            <h3>Entities</h3>
            <table>
                <tr><th>Type</th><th>Text</th></tr>
                {{range .Entities}}<tr><td>{{.Type}}</td><td>{{.Text}}</td></tr>{{end}}
            </table>
        </div>
        <div class="card">
            <h3>Clauses</h3>
            <table>
                <tr><th>Category</th><th>Text</th></tr>
                {{range .Clauses}}<tr><td>{{.Category}}</td><td>{{.Text}}</td></tr>{{end}}
            </table>
        </div>
        <div class="card">
            <h3>Risk findings</h3>
            <table>
                <tr><th>Severity</th><th>Category</th><th>Match</th></tr>
                {{range .Findings}}<tr><td>{{.Severity}}</td><td>{{.Category}}</td><td>{{.MatchedText}}</td></tr>{{end}}
            </table>
        </div>
    </div>

    <script>
        const severityCounts = {{.SeverityCounts}};

        Plotly.newPlot('gauge', [{
            type: 'indicator',
            mode: 'gauge+number',
            value: {{.Score}},
            title: { text: 'Composite Risk Score' },
            gauge: {
                axis: { range: [0, 100] },
                bar: { color: '#1e3a8a' },
                steps: [
                    { range: [0, 30], color: '#d1fae5' },
                    { range: [30, 60], color: '#fef3c7' },
                    { range: [60, 100], color: '#fee2e2' }
                ]
            }
        }], { height: 280, margin: { t: 40, b: 10 } });

        Plotly.newPlot('severity', [{
            type: 'bar',
            x: ['High', 'Medium', 'Low'],
            y: [severityCounts.high, severityCounts.medium, severityCounts.low],
            marker: { color: ['#991b1b', '#92400e', '#065f46'] }
        }], { title: 'Findings by severity', height: 280, margin: { t: 40, b: 30 } });
    </script>
</body>
</html>`

// HTMLVisualizer renders an analysis as a standalone HTML dashboard.
type HTMLVisualizer struct {
	outputPath string
}

// NewHTMLVisualizer creates a visualizer writing to the given path.
func NewHTMLVisualizer(outputPath string) *HTMLVisualizer {
	return &HTMLVisualizer{
		outputPath: outputPath,
	}
}

// Visualize renders the dashboard and writes it to the output path.
func (v *HTMLVisualizer) Visualize(analysis *contract.Analysis) error {
	data, err := Render(analysis)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(v.outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(v.outputPath, data, 0644)
}

// Render produces the dashboard HTML for an analysis.
func Render(analysis *contract.Analysis) ([]byte, error) {
	severityCounts, err := json.Marshal(map[string]int{
		"high":   len(analysis.Risk.High),
		"medium": len(analysis.Risk.Medium),
		"low":    len(analysis.Risk.Low),
	})
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("dashboard").Parse(dashboardTemplate)
	if err != nil {
		return nil, err
	}

	findings := analysis.Risk.Findings()

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"Name":           analysis.Document.Name,
		"AnalyzedAt":     analysis.AnalyzedAt.Format("2006-01-02 15:04:05"),
		"EntityCount":    len(analysis.Entities),
		"ClauseCount":    len(analysis.Clauses),
		"FindingCount":   len(findings),
		"Score":          template.JS(strconv.Itoa(analysis.Risk.Score)),
		"Level":          analysis.Risk.Level,
		"LevelClass":     levelClass(analysis.Risk.Level),
		"Recommendation": analysis.Risk.Recommendation,
		"Entities":       analysis.Entities,
		"Clauses":        analysis.Clauses,
		"Findings":       findings,
		"SeverityCounts": template.JS(severityCounts),
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func levelClass(level string) string {
	fields := strings.Fields(level)
	if len(fields) == 0 {
		return "low"
	}
	return strings.ToLower(fields[0])
}
