// Package views renders the HTML pages of the web UI as templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/vincentarsontaneli/data-processor-app/internal/core"
)

// htmlWriter accumulates the first write error so components can be
// written as straight-line code.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		h.text(title)
		h.raw(`</title><style>`, pageStyle, `</style></head><body><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}` +
	`table{border-collapse:collapse;margin:1rem 0}th,td{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:left}` +
	`th{background:#f3f4f6}.missing{color:#9ca3af}.alert{border:1px solid #f87171;background:#fef2f2;padding:1rem}` +
	`.type{font-size:.8rem;color:#4b5563}`

// UploadPage renders the upload form and the list of supported types.
func UploadPage(types []core.TypeInfo) templ.Component {
	return Layout("Data processor", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Infer column types</h1>`,
			`<form method="post" action="/preview" enctype="multipart/form-data">`,
			`<p><input type="file" name="file" accept=".csv,.xls,.xlsx" required></p>`,
			`<p><label>Sheet <input type="text" name="sheet"></label> `,
			`<label>Delimiter <input type="text" name="delimiter" size="3"></label> `,
			`<label>Encoding <input type="text" name="encoding" placeholder="utf-8"></label></p>`,
			`<p><label>Overrides (JSON) <input type="text" name="overrides" placeholder='{"price":"float"}'></label></p>`,
			`<p><button type="submit">Process</button></p></form>`,
			`<h2>Types</h2><table><thead><tr><th>Name</th><th>Label</th><th>Can convert to</th></tr></thead><tbody>`)
		for _, t := range types {
			h.raw(`<tr><td>`)
			h.text(t.Name)
			h.raw(`</td><td>`)
			h.text(t.Label)
			h.raw(`</td><td>`)
			h.text(strings.Join(t.Conversions, ", "))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	}))
}

// Preview renders the converted head rows with each column's type.
func Preview(fileName string, res *core.Result) templ.Component {
	return Layout("Preview: "+fileName, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>`)
		h.text(fileName)
		h.raw(`</h1><p>`)
		h.text(fmt.Sprintf("%d rows, %d columns, %s in %d ms",
			res.Metadata.TotalRows, res.Metadata.TotalColumns, humanBytes(res.Metadata.MemoryUsage), res.DurationMS))
		h.raw(`</p><table><thead><tr>`)
		for _, c := range res.Columns {
			h.raw(`<th>`)
			h.text(c.Name)
			h.raw(`<div class="type">`)
			h.text(c.Dtype)
			h.raw(`</div></th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, rec := range res.Head {
			h.raw(`<tr>`)
			for _, cell := range rec.Cells() {
				if cell == "" {
					h.raw(`<td class="missing">&mdash;</td>`)
					continue
				}
				h.raw(`<td>`)
				h.text(cell)
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table><h2>Columns</h2><table><thead><tr>`,
			`<th>Column</th><th>Missing</th><th>Distinct</th><th>Decided by</th></tr></thead><tbody>`)
		for _, c := range res.Columns {
			h.raw(`<tr><td>`)
			h.text(c.Name)
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(res.Metadata.NullCounts[c.Name]))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(res.Metadata.UniqueCounts[c.Name]))
			h.raw(`</td><td>`)
			h.text(res.Evidence[c.Name].Evidence.Heuristic)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table><p><a href="/">Process another file</a></p>`)
		return h.err
	}))
}

// ErrorAlert renders a user-facing error.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="type">Code: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
}

// ErrorPage renders a full page around ErrorAlert.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Error", ErrorAlert(message, action, code))
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
