package dashboard

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kieranyoussef/finops-watchtower/internal/domain/run"
)

var funcMap = template.FuncMap{
	"fmtTime": func(t run.Timestamp) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format(time.DateTime)
	},
	"rowCount": func(n *int) any {
		if n == nil {
			return "-"
		}
		return *n
	},
	"join":       strings.Join,
	"pathEscape": url.PathEscape,
	"errText": func(err error) string {
		if err == nil {
			return ""
		}
		return capitalize(err.Error())
	},
}

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{template "title" .}}</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,sans-serif;background:#0d1117;color:#c9d1d9;font-size:13px;line-height:1.5}
a{color:#58a6ff;text-decoration:none}
nav{background:#161b22;border-bottom:1px solid #30363d;padding:8px 16px}
nav .brand{color:#f0f6fc;font-weight:700;font-size:15px}
main{padding:16px;max-width:1200px}
h1{font-size:16px;font-weight:700;color:#f0f6fc;margin-bottom:12px}
h2{font-size:13px;font-weight:600;color:#8b949e;text-transform:uppercase;margin:16px 0 8px}
table{width:100%;border-collapse:collapse;font-size:12px}
th{text-align:left;padding:6px 10px;border-bottom:1px solid #30363d;color:#8b949e}
td{padding:5px 10px;border-bottom:1px solid #21262d;vertical-align:top}
pre{white-space:pre-wrap;word-break:break-all;font-family:monospace;font-size:11px}
.section{background:#161b22;border:1px solid #30363d;border-radius:6px;margin-bottom:16px;padding:12px}
.notice{padding:8px 12px;border-radius:6px;margin-bottom:12px}
.notice.success{background:#10b98122;color:#34d399}
.notice.error{background:#f8717122;color:#f87171}
.panel-error{border-color:#f87171;color:#f87171}
.tag{display:inline-block;padding:1px 6px;border-radius:4px;font-size:11px;background:#21262d;border:1px solid #30363d}
.mono{font-family:monospace;color:#79c0ff}
.dim{color:#8b949e}
textarea{width:100%;min-height:120px;background:#0d1117;color:#c9d1d9;border:1px solid #30363d;font-family:monospace}
button{background:#1f6feb;border:none;color:#fff;padding:4px 12px;border-radius:4px;cursor:pointer}
</style>
</head>
<body>
<nav><a class="brand" href="/runs">Watchtower</a></nav>
<main>
{{with .Notice}}{{if not .Empty}}<div class="notice {{.Level}}" role="status">{{.Message}}</div>{{end}}{{end}}
{{template "content" .}}
</main>
</body>
</html>{{end}}
`

const tmplList = `
{{define "title"}}Runs · Watchtower{{end}}
{{define "content"}}
<h1>Runs</h1>

<div class="section">
<h2>New run</h2>
{{with .FormError}}<div class="notice error" role="alert">{{.}}</div>{{end}}
<form method="post" action="/runs/file" enctype="multipart/form-data">
<input type="file" name="file">
<label><input type="checkbox" name="explain" value="true"{{if .Draft.Explain}} checked{{end}}> Explain</label>
<button type="submit">Upload file</button>
</form>
<form method="post" action="/runs/json">
<textarea name="rows" placeholder='[{"vendor":"acme","amount":10}]'>{{.Draft.JSONText}}</textarea>
<label><input type="checkbox" name="explain" value="true"{{if .Draft.Explain}} checked{{end}}> Explain</label>
<button type="submit">Create from JSON</button>
</form>
</div>

{{if .List.Err}}<div class="section panel-error" role="alert">Failed to load runs: {{errText .List.Err}}</div>{{end}}

<table>
<thead><tr><th>ID</th><th>Created</th><th>Source</th><th>Rows</th><th></th></tr></thead>
<tbody>
{{range .Runs}}<tr>
<td><a class="mono" href="/runs/{{pathEscape .ID}}">{{.ID}}</a></td>
<td>{{fmtTime .CreatedAt}}</td>
<td>{{.Source}}</td>
<td>{{rowCount .RowCount}}</td>
<td><a href="/runs/{{pathEscape .ID}}/export.csv?from=list">Export CSV</a></td>
</tr>{{else}}<tr><td colspan="5" class="dim">No runs yet.</td></tr>{{end}}
</tbody>
</table>
{{if .List.HasMore}}<p><a href="/runs?more=1">Load more</a></p>{{end}}
{{end}}
`

const tmplDetail = `
{{define "title"}}Run {{.Detail.ID}} · Watchtower{{end}}
{{define "content"}}
<p><a href="/runs">&larr; All runs</a></p>
{{if .Detail.Err}}<div class="section panel-error" role="alert">Failed to load run: {{errText .Detail.Err}}</div>
{{else}}{{with .Detail.Run}}
<h1>Run <span class="mono">{{.ID}}</span></h1>
<div class="section">
<table>
<tr><th>Created</th><td>{{fmtTime .CreatedAt}}</td></tr>
<tr><th>Source</th><td>{{.Source}}</td></tr>
<tr><th>Rows</th><td>{{rowCount .RowCount}}</td></tr>
<tr><th>Coverage</th><td>{{range .Coverage}}<span class="tag">{{.}}</span> {{end}}</td></tr>
</table>
<p><a href="/runs/{{pathEscape .ID}}/export.csv">Export CSV</a></p>
</div>
{{end}}
{{if .Detail.ShowExplanation}}<div class="section"><h2>Explanation</h2><p>{{.Detail.Run.Explanation}}</p></div>{{end}}
<h2>Findings</h2>
<table>
<thead><tr><th>#</th><th>Type</th><th>Reason</th><th>Row</th></tr></thead>
<tbody>
{{range .Detail.Findings}}<tr><td>{{.Index}}</td><td>{{.Type}}</td><td>{{.Reason}}</td><td><pre>{{.Row}}</pre></td></tr>
{{else}}<tr><td colspan="4" class="dim">No findings.</td></tr>{{end}}
</tbody>
</table>
{{end}}
{{end}}
`

var (
	listTmpl   = template.Must(template.New("list").Funcs(funcMap).Parse(tmplBase + tmplList))
	detailTmpl = template.Must(template.New("detail").Funcs(funcMap).Parse(tmplBase + tmplDetail))
)

type listPage struct {
	Notice    Notice
	List      ListState
	Runs      []run.Run
	Draft     Draft
	FormError string
}

type detailPage struct {
	Notice Notice
	Detail DetailState
}

// render buffers the page; a template error produces a bare 500.
func render(w http.ResponseWriter, log *zap.Logger, t *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Error("template error", zap.String("template", t.Name()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
