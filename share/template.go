package share

import (
	"fmt"
	"text/template"

	"github.com/dustin/go-humanize"
)

var (
	TemplateFuncMap = template.FuncMap{
		"fn": func(value interface{}) string {
			switch e := value.(type) {
			case float32:
				return humanize.CommafWithDigits(float64(e), 1)
			case float64:
				return humanize.CommafWithDigits(e, 1)
			case int:
				return humanize.Comma(int64(e))
			case int64:
				return humanize.Comma(e)
			}
			return ""
		},
		// 밀리초 -> m:ss.SSS
		"ft": func(ms int64) string {
			sign := ""
			if ms < 0 {
				sign = "-"
				ms = -ms
			}
			return fmt.Sprintf("%s%d:%02d.%03d", sign, ms/60000, ms/1000%60, ms%1000)
		},
		// 밀리초 -> 초
		"fs": func(ms interface{}) string {
			switch e := ms.(type) {
			case int64:
				return humanize.FtoaWithDigits(float64(e)/1000, 3) + "s"
			case float64:
				return humanize.FtoaWithDigits(e/1000, 3) + "s"
			}
			return ""
		},
	}
)
