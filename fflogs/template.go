package fflogs

import (
	"embed"
	"text/template"
)

//go:embed query/*.tmpl
var queryFS embed.FS

var (
	tmplReportFight  = template.Must(template.ParseFS(queryFS, "query/tmplReportFight.tmpl"))
	tmplReportEvents = template.Must(template.ParseFS(queryFS, "query/tmplReportEvents.tmpl"))
)
