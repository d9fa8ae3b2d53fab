package report

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #1f2933; line-height: 1.55; }
h1 { color: #166534; }
h2 { border-bottom: 2px solid #bbf7d0; padding-bottom: .25rem; margin-top: 2.5rem; }
.banner { background: #ecfdf5; border: 1px solid #86efac; padding: .6rem 1rem; border-radius: 6px; }
dl { display: grid; grid-template-columns: max-content 1fr; gap: .25rem 1rem; }
dt { font-weight: 600; }
table { border-collapse: collapse; }
td, th { border: 1px solid #d1d5db; padding: .3rem .6rem; }
.sources { font-size: .85rem; color: #52606d; }
@media print { .banner { display: none; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Shared}}<p class="banner">This is a read-only copy of a shared analysis.</p>{{end}}
{{if .Answers}}
<h2>Your Details</h2>
<dl>
{{range .Answers}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>
{{end}}</dl>
{{end}}
{{range .Sections}}
<section id="{{.Key}}">
<h2>{{.Title}}</h2>
{{.Body}}
{{if .Sources}}
<div class="sources"><strong>Sources</strong>
<ol>
{{range .Sources}}<li><a href="{{.URI}}" rel="nofollow noopener" target="_blank">{{if .Title}}{{.Title}}{{else}}{{.URI}}{{end}}</a></li>
{{end}}</ol>
</div>
{{end}}
</section>
{{else}}
<p>No analysis has been run yet.</p>
{{end}}
</body>
</html>
`
