package report

// Style is the stylesheet shared by every report. It is embedded as a Go
// constant so a report file has no external dependencies.
const Style = `
  body {
    font-family: Arial, sans-serif;
    margin: 40px;
    color: #333;
  }
  .container {
    max-width: 1200px;
    margin: 0 auto;
  }
  h1, h2 {
    color: #2c3e50;
    padding-bottom: 10px;
    border-bottom: 2px solid #eee;
  }
  .graph-container {
    margin: 20px 0;
    padding: 15px;
    border: 1px solid #ddd;
    border-radius: 5px;
  }
  .graph-container svg {
    max-width: 100%;
    height: auto;
  }
  table {
    width: 100%;
    border-collapse: collapse;
    margin: 20px 0;
  }
  th, td {
    padding: 12px;
    border: 1px solid #ddd;
    text-align: left;
  }
  th {
    background-color: #f5f5f5;
  }
  tr:nth-child(even) {
    background-color: #f9f9f9;
  }
`

// ReportTemplate is the HTML template for a business report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>` + Style + `</style>
</head>
<body>
<div class="container">
  <h1>{{.Title}}</h1>
  <p>Generated on: {{.GeneratedAt}}</p>
{{- range .Sections}}
  <div class="section">
    <h2>{{.Name}}</h2>
    {{- if .HasChart}}
    <div class="graph-container">
      {{.Chart}}
    </div>
    {{- end}}
    <div class="table-container">
      <table class="table">
        <thead>
          <tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
        </thead>
        <tbody>
        {{- range .Rows}}
          <tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
        {{- end}}
        </tbody>
      </table>
    </div>
  </div>
{{- end}}
</div>
</body>
</html>
`
