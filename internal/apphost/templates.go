package apphost

import (
	"bytes"
	"html/template"

	"github.com/bryanchriswhite/RetroDesk/internal/logger"
)

var windowTemplate = template.Must(template.New("window").Parse(`<div class="title-bar">
  <div class="title-bar-text">{{.Title}}</div>
  <div class="title-bar-controls">
    <div class="control-box minimize" data-action="minimize">_</div>
    <div class="control-box maximize" data-action="maximize">&#9633;</div>
    <div class="control-box close" data-action="close">X</div>
  </div>
</div>
<div class="window-body">{{.Body}}</div>`))

var explorerTemplate = template.Must(template.New("explorer").Parse(
	`{{range .}}<div class="file-item" data-id="{{.ID}}"><img src="/api/icons/{{.ID}}" alt="icon"><div class="file-name">{{.DisplayName}}</div></div>{{else}}<p>Empty Folder</p>{{end}}`))

var embeddedTemplate = template.Must(template.New("embedded").Parse(`<div class="viewer">
  <div class="viewer-toolbar">
    <button class="btn open-external" data-url="{{.External}}">Open in new tab</button>
    <a href="{{.External}}" target="_blank" rel="noopener noreferrer">Open link</a>
  </div>
  <div class="viewer-frame">
    <iframe src="{{.Frame}}" title="{{.Title}}" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" allowfullscreen></iframe>
  </div>
</div>`))

var documentTemplate = template.Must(template.New("document").Parse(`<div class="viewer document">
  <div class="viewer-toolbar">
    <h3>{{.Title}}</h3>
    <button class="btn open-external" data-url="{{.External}}">Open in new tab</button>
  </div>
  <div class="viewer-frame">
    <iframe src="{{.Frame}}" title="{{.Title}}"></iframe>
    <div class="iframe-error" hidden>
      <p>This content cannot be displayed inside the app.</p>
      <a class="open-link" href="{{.External}}" target="_blank" rel="noopener noreferrer">Open in a new tab</a>
    </div>
  </div>
</div>`))

var textTemplate = template.Must(template.New("text").Parse(`<div class="text-body">{{.}}</div>`))

var settingsTemplate = template.Must(template.New("settings").Parse(`<div class="settings">
  <div class="settings-group">
    <h4>Background Color</h4>
    {{range .}}<label class="radio-option"><input type="radio" name="bg" value="{{.Value}}"{{if .Default}} checked{{end}}> {{.Label}}</label>
    {{end}}
  </div>
  <div class="settings-group">
    <h4>Wallpaper URL</h4>
    <input type="text" id="bg-url" placeholder="https://...">
    <button class="btn" id="apply-url">Apply</button>
  </div>
</div>`))

var gameTemplate = template.Must(template.New("game").Parse(`<div class="game">
  <div class="game-status">{{.Message}}</div>
  <div class="game-board">{{range $i, $m := .Board}}<div class="game-cell" data-index="{{$i}}">{{$m}}</div>{{end}}</div>
  <div class="game-controls"><button class="btn" id="reset-game">Restart Game</button></div>
</div>`))

// execute renders tpl, degrading to an empty body on failure
func execute(tpl *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		logger.WithComponent("apphost").Warn().Err(err).Str("template", tpl.Name()).Msg("Render failed")
		return ""
	}
	return buf.String()
}

// RenderWindow wraps a body in the window chrome
func RenderWindow(title, body string) string {
	return execute(windowTemplate, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
}
