package api

import (
	"html/template"
	"net/http"

	"github.com/unalkalkan/Prompter/internal/render"
	"github.com/unalkalkan/Prompter/internal/segmentation"
	"github.com/unalkalkan/Prompter/pkg/types"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Prompter</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; }
textarea { width: 100%; height: 24rem; font-family: monospace; }
fieldset { border: 0; padding: 0; margin: 1rem 0; display: flex; gap: 1rem; flex-wrap: wrap; }
label { display: flex; flex-direction: column; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>Prompter</h1>
<p>One script line per row. A leading all-caps word is the speaker, text in parentheses is a stage direction.</p>
<form method="post" action="/api/v1/decks" enctype="multipart/form-data">
<textarea name="script" placeholder="HOST Halo pemirsa, apa kabar? (SENYUM)"></textarea>
<fieldset>
<label>Title <input type="text" name="title" value="{{.Title}}"></label>
<label>Script file <input type="file" name="file" accept=".txt,text/plain"></label>
</fieldset>
<fieldset>
<label>Font preset
<select name="preset">
{{- range .Presets}}
<option value="{{.}}"{{if eq . $.Preset}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
</label>
<label>Ideal words <input type="number" name="ideal" min="1" placeholder="{{.Thresholds.Ideal}}"></label>
<label>Maximum words <input type="number" name="maximum" min="1" placeholder="{{.Thresholds.Maximum}}"></label>
<label>Format
<select name="format">
{{- range .Formats}}
<option value="{{.}}"{{if eq . $.Format}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
</label>
</fieldset>
<button type="submit">Build deck</button>
</form>
</body>
</html>
`))

type formData struct {
	Title      string
	Preset     string
	Thresholds types.Thresholds
	Format     string
	Presets    []string
	Formats    []string
}

// Index handles GET /
func (h *DeckHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	data := formData{
		Title:      h.opts.Title,
		Preset:     h.opts.Preset,
		Thresholds: h.opts.Thresholds,
		Format:     h.opts.Format,
		Presets:    segmentation.PresetNames(),
		Formats:    render.Formats(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render form", "error", err)
	}
}
