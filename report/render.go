package report

import (
	"embed"
	"io"
	"text/template"

	"ffxiv_cadence/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

//go:embed tmpl/*.tmpl
var tmplFS embed.FS

var tmplText = template.Must(
	template.New("report.tmpl").
		Funcs(share.TemplateFuncMap).
		ParseFS(tmplFS, "tmpl/report.tmpl"),
)

func RenderJSON(w io.Writer, stat *Statistic) error {
	return errors.WithStack(jsoniter.NewEncoder(w).Encode(stat))
}

func RenderText(w io.Writer, stat *Statistic) error {
	return errors.WithStack(tmplText.Execute(w, stat))
}

// Render picks the renderer by format, "text" or anything else for JSON.
func Render(w io.Writer, stat *Statistic, format string) error {
	if format == "text" {
		return RenderText(w, stat)
	}
	return RenderJSON(w, stat)
}
