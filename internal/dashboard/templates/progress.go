package templates

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"finitefield.org/artist-dashboard/internal/dashboard/checklist"
	"finitefield.org/artist-dashboard/internal/dashboard/templates/helpers"
)

// Progress renders a checklist progress bar. Out-of-band bars replace the
// element with the same id wherever it sits on the page.
func Progress(bar ProgressBar) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div id="`)
		buf.WriteString(templ.EscapeString(bar.ID))
		buf.WriteString(`" class="progress"`)
		if bar.OOB {
			buf.WriteString(` hx-swap-oob="true"`)
		}
		buf.WriteString(">\n  <div class=\"progress-bar\"><div class=\"progress-fill\" style=\"")
		buf.WriteString(templ.EscapeString(string(helpers.ProgressStyle(bar.Progress))))
		buf.WriteString("\"></div></div>\n  <p class=\"progress-text\"><span class=\"progress-count\">")
		buf.WriteString(strconv.Itoa(bar.Progress.Completed))
		buf.WriteString(`</span> / <span class="progress-total">`)
		buf.WriteString(strconv.Itoa(bar.Progress.Total))
		buf.WriteString("</span> done</p>\n</div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// progressHTML embeds the Progress component in html/template views.
func progressHTML(id string, p checklist.Progress, oob bool) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Progress(ProgressBar{ID: id, Progress: p, OOB: oob}).Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
