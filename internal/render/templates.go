package render

const pageTemplate = `
{{- define "page" -}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/calendar.css">
<script src="/static/calendar.js" defer></script>
</head>
<body>
<div class="eventcal eventcal-{{.Variant}}" data-ready="true">
{{template "calendars" .}}
</div>
</body>
</html>
{{- end}}

{{- define "calendars" -}}
<div class="{{.ColumnsClass}}">
{{- range .Months}}
{{- if eq $.Variant "simple"}}{{template "simple-month" .}}{{else}}{{template "event-month" .}}{{end}}
{{- end}}
</div>
<div class="calendars-footer">
<ul class="holiday-titles">
{{- range .Legend}}
<li class="holiday-title"><span class="mark" style="{{.Style}}"></span> <span class="title">{{.Title}}</span></li>
{{- end}}
</ul>
</div>
{{- end}}

{{- define "nav-prev" -}}
{{if .Enabled}}<button type="button" class="month-prev" data-month="{{.Month}}" data-href="{{.Href}}">&lsaquo;</button>
{{- else}}<button type="button" class="month-prev" disabled="disabled">&lsaquo;</button>{{end}}
{{- end}}

{{- define "nav-next" -}}
{{if .Enabled}}<button type="button" class="month-next" data-month="{{.Month}}" data-href="{{.Href}}">&rsaquo;</button>
{{- else}}<button type="button" class="month-next" disabled="disabled">&rsaquo;</button>{{end}}
{{- end}}

{{- define "event-month" -}}
<div class="calendar xo-month-wrap">
<table class="xo-month">
<caption><div class="month-header">
{{- if .Navigation}}{{template "nav-prev" .Prev}}{{end -}}
<span class="calendar-caption">{{.Caption}}</span>
{{- if .Navigation}}{{template "nav-next" .Next}}{{end -}}
</div></caption>
<thead><tr>{{range .Headers}}<th class="{{.Class}}">{{.Label}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Weeks}}
<tr><td colspan="7" class="month-week">
<table class="month-dayname"><tbody><tr class="dayname">
{{- range .Days}}<td><div{{if .Class}} class="{{.Class}}"{{end}}{{if .Style}} style="{{.Style}}"{{end}}>{{.Label}}</div></td>{{end -}}
</tr></tbody></table>
<div class="month-dayname-space"></div>
{{- if .Lanes}}
{{- range .Lanes}}
<table class="month-event"><tbody><tr>
{{- range .}}
{{- if .Empty}}<td></td>
{{- else}}<td colspan="{{.Span}}">
{{- if .Href}}<a href="{{.Href}}" title="{{.Title}}">{{end -}}
<span class="month-event-title {{.Class}}" style="{{.Style}}" title="{{.When}}">{{.Label}}</span>
{{- if .Href}}</a>{{end -}}
</td>
{{- end}}
{{- end -}}
</tr></tbody></table>
{{- end}}
{{- else}}
<table class="month-event-space"><tbody><tr><td><div></div></td><td><div></div></td><td><div></div></td><td><div></div></td><td><div></div></td><td><div></div></td><td><div></div></td></tr></tbody></table>
{{- end}}
</td></tr>
{{- end}}
</tbody>
</table>
</div>
{{- end}}

{{- define "simple-month" -}}
<div class="calendar xo-simple-calendar-table">
<table class="month">
<caption{{if .CaptionStyle}} style="{{.CaptionStyle}}"{{end}}><div class="month-header">
{{- if .Navigation}}{{template "nav-prev" .Prev}}<span class="month-title">{{.Caption}}</span>{{template "nav-next" .Next}}
{{- else}}<span class="title">{{.Caption}}</span>{{end -}}
</div></caption>
<thead><tr class="week-days">{{range .Headers}}<th class="{{.Class}}"><span>{{.Label}}</span></th>{{end}}</tr></thead>
<tbody>
{{- range .Weeks}}
<tr class="{{.RowClass}}">
{{- range .Days}}<td class="{{.Class}}"><span{{if .Style}} style="{{.Style}}"{{end}}>{{.Label}}</span></td>{{end -}}
</tr>
{{- end}}
</tbody>
</table>
</div>
{{- end}}
`
