package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/unalkalkan/Prompter/pkg/types"
)

// deckTemplate lays out one full-screen slide per section. Colors follow the
// studio prompter convention: speaker yellow, action red, text white.
var deckTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
html, body { margin: 0; background: #000; }
body { scroll-snap-type: y mandatory; overflow-y: scroll; height: 100vh; }
section.slide {
  box-sizing: border-box; height: 100vh; padding: 2vh 2vw;
  display: flex; flex-direction: column; align-items: center; justify-content: center;
  scroll-snap-align: start; text-align: center;
  font-family: "Arial Black", Arial, sans-serif; font-weight: bold; font-size: 50pt;
  color: #fff; white-space: pre-wrap;
}
.slide p { margin: 0; }
.speaker { color: #ff0; display: block; }
.action { color: #f00; }
</style>
</head>
<body>
{{- range .Slides}}
<section class="slide" id="slide-{{.Number}}">
<p>{{range .Runs}}<span class="{{.Kind}}">{{.Text}}</span>{{end}}</p>
</section>
{{- end}}
</body>
</html>
`))

// HTMLEncoder writes a self-contained teleprompter page
type HTMLEncoder struct{}

func (HTMLEncoder) Encode(w io.Writer, deck *types.Deck) error {
	if err := deckTemplate.Execute(w, deck); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

func (HTMLEncoder) ContentType() string { return "text/html; charset=utf-8" }
func (HTMLEncoder) Extension() string   { return "html" }
func (HTMLEncoder) Binary() bool        { return false }
