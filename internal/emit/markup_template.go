package emit

// markupTemplate 是导出与预览共用的 HTML 模板。
// 颜色、字体等变量由 Go 侧计算后以 template.CSS 注入。
const markupTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://fonts.googleapis.com/css2?family=Source+Sans+3:wght@400;600;700&family=Merriweather:wght@400;700&family=Montserrat:wght@400;600;700&display=swap">
<title>{{.Title}}</title>
<style>
:root { {{.Vars}} }
* { box-sizing: border-box; }
html, body { -webkit-print-color-adjust: exact; print-color-adjust: exact; }
body {
  margin: 0;
  font-family: var(--font-family);
  color: var(--text);
  font-size: var(--font-size);
  line-height: var(--line-height);
  background: #f5f7fb;
}
.page { width: 794px; min-height: 1123px; margin: 0 auto; background: #fff; }
.resume-section { margin-bottom: var(--section-gap); }
.resume-section h2 {
  margin: 0 0 8px;
  color: var(--secondary);
  text-transform: uppercase;
  font-size: 0.9em;
  letter-spacing: 0.06em;
  border-bottom: 1px solid #e6ebf2;
  padding-bottom: 4px;
}
.page-break { break-before: page; page-break-before: always; }
.section-item { margin-bottom: var(--item-gap); }
.item-title { font-weight: 700; margin-bottom: 2px; }
.item-meta { color: #4f5f72; margin-bottom: 4px; }
.item-text { margin: 0; white-space: pre-wrap; }
.item-field strong { font-weight: 600; }
.placeholder { color: #8a96a6; font-style: italic; }
.item-link { color: var(--primary); text-decoration: none; }
.tag-list { display: flex; flex-wrap: wrap; gap: 6px; }
.tag {
  padding: 2px 8px;
  border-radius: 999px;
  border: 1px solid color-mix(in srgb, var(--primary) 35%, #ffffff);
  background: color-mix(in srgb, var(--primary) 10%, #ffffff);
  font-size: 0.88em;
}
.contact-list { display: flex; flex-wrap: wrap; gap: 10px; font-size: 0.92em; }
.header h1 { margin: 0; font-size: 2em; }
.header h3 { margin: 6px 0 10px; font-weight: 600; }

.header-plain { padding: var(--padding) var(--padding) 12px; margin-bottom: 18px; border-bottom: 3px solid var(--primary); }
.header-plain h3 { color: var(--secondary); }
.header-plain .contact-list { color: #2a3a4f; }
.flow { padding: 0 var(--padding) var(--padding); }

.header-hero { background: linear-gradient(135deg, var(--primary), var(--secondary)); color: #fff; padding: 26px 28px; }
.tpl-creative .header-hero { background: linear-gradient(125deg, var(--secondary), var(--primary)); }
.header-hero h1 { font-size: 2.1em; }
.cards .flow, .tpl-modern .flow { padding: 18px 22px; display: grid; grid-template-columns: 1fr; gap: 10px; }
.card { border-left: 4px solid var(--primary); padding: 10px 12px; background: #f9fbff; }
.card h2 { border-bottom: none; margin-bottom: 6px; }
.tpl-creative .card { border-left: none; border: 1px solid color-mix(in srgb, var(--primary) 25%, #ffffff); border-radius: 12px; }

.header-banner { background: var(--secondary); color: #fff; padding: 24px var(--padding); border-bottom: 4px solid var(--primary); }
.header-banner .contact-list { opacity: 0.95; }

.columns { display: grid; grid-template-columns: var(--sidebar-width) 1fr; }
.side { padding: 24px 16px; }
.main { padding: 24px 20px; }
.main .resume-section h2 { color: var(--primary); }
.tpl-professional .side { background: color-mix(in srgb, var(--secondary) 92%, #ffffff); color: #fff; }
.tpl-professional .side .resume-section h2 { color: #fff; border-color: rgba(255, 255, 255, 0.28); }
.tpl-professional .side .item-meta { color: rgba(255, 255, 255, 0.85); }
.tpl-professional .side .header h1 { font-size: 1.55em; }
.tpl-professional .side .contact-list { display: grid; gap: 4px; margin-bottom: 18px; font-size: 0.9em; }
.tpl-executive .side { border-right: 1px solid #e6ebf2; background: #f9fbff; }

.grid { padding: 18px 22px; display: grid; gap: 12px; }
.grid-row { display: grid; grid-template-columns: 1fr 1fr; gap: 12px; }

@page { size: A4; margin: 0; }
</style>
</head>
<body>
<main class="page tpl-{{.Template}}{{if .Cards}} cards{{end}}">
{{if ne .HeaderStyle "sidebar"}}{{template "header" .}}{{end}}
{{if eq .Columns "split"}}<div class="columns">
<aside class="side">{{if eq .HeaderStyle "sidebar"}}{{template "header" .}}{{end}}{{range .Sidebar}}{{template "section" .}}{{end}}</aside>
<div class="main">{{range .Main}}{{template "section" .}}{{end}}</div>
</div>
{{else if eq .Columns "grid"}}<div class="grid">
{{range .Rows}}<div class="grid-row">
<div class="cell">{{with .Left}}<div class="card">{{template "section" .}}</div>{{end}}</div>
<div class="cell">{{with .Right}}<div class="card">{{template "section" .}}</div>{{end}}</div>
</div>
{{end}}</div>
{{else}}<div class="flow">
{{range .Main}}{{if $.Cards}}<div class="card">{{template "section" .}}</div>{{else}}{{template "section" .}}{{end}}
{{end}}</div>
{{end}}</main>
</body>
</html>
{{define "header"}}<header class="header header-{{.HeaderStyle}}">
{{with .Header.FullName}}<h1>{{.}}</h1>{{end}}
{{with .Header.Role}}<h3>{{.}}</h3>{{end}}
{{with .Header.Contacts}}<div class="contact-list">{{range .}}<span>{{.}}</span>{{end}}</div>{{end}}
</header>{{end}}
{{define "section"}}<section class="resume-section{{if .PageBreakBefore}} page-break{{end}}" data-section-id="{{.ID}}">
<h2>{{.Title}}</h2>
{{if .Placeholder}}<p class="item-text placeholder">{{placeholder}}</p>{{else}}{{range .Items}}<article class="section-item">{{range .Blocks}}{{template "block" .}}{{end}}</article>{{end}}{{end}}
</section>{{end}}
{{define "block"}}{{if eq .Kind "title"}}<div class="item-title">{{.Text}}</div>{{else if eq .Kind "meta"}}<div class="item-meta">{{.Text}}</div>{{else if eq .Kind "paragraph"}}<p class="item-text">{{.Text}}</p>{{else if eq .Kind "link"}}<a class="item-link" href="{{.Href}}">{{.Text}}</a>{{else if eq .Kind "tags"}}<div class="tag-list">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{else if eq .Kind "line"}}<div class="item-line">{{.Text}}</div>{{else if eq .Kind "field"}}<div class="item-field"><strong>{{.Label}}:</strong> {{.Text}}</div>{{end}}{{end}}
`
