package apphost

import (
	"html/template"
	"strings"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/content"
	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/game"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/microcosm-cc/bluemonday"
)

// Options configures the registry's collaborators
type Options struct {
	// Detector runs framing-failure detection for document viewers; nil
	// disables detection and the fallback never shows
	Detector *embed.Detector
	// RelayBase, when set, routes absolute frame sources through the relay
	RelayBase string
	// BotDelay is the pause before the game bot replies
	BotDelay time.Duration
	// NewPicker supplies the bot's randomness; nil uses a seeded PCG
	NewPicker func() game.Picker
}

// Registry resolves application kinds to hosts
type Registry struct {
	opts     Options
	sanitize *bluemonday.Policy
}

// NewRegistry creates a registry
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts,
		sanitize: bluemonday.UGCPolicy(),
	}
}

// For returns the host for kind. Unknown kinds get an empty body and no
// mount step.
func (r *Registry) For(kind content.AppKind) Host {
	var h Host
	switch kind {
	case content.AppExplorer:
		h = Host{Render: r.renderExplorer}
	case content.AppEmbeddedViewer:
		h = Host{Render: r.renderEmbedded, AfterMount: r.mountEmbedded}
	case content.AppDocumentViewer:
		h = Host{Render: r.renderDocument, AfterMount: r.mountDocument}
	case content.AppTextViewer:
		h = Host{Render: r.renderText}
	case content.AppSettings:
		h = Host{Render: r.renderSettings, AfterMount: r.mountSettings}
	case content.AppGame:
		h = Host{Render: r.renderGame, AfterMount: r.mountGame}
	default:
		logger.WithComponent("apphost").Debug().Str("app", string(kind)).Msg("No host for application kind")
		return emptyHost
	}
	h.Kind = kind
	return h
}

// Render produces the full window markup for item: chrome plus body
func (r *Registry) Render(item *content.Item) string {
	return RenderWindow(item.DisplayName(), r.For(item.App).Render(item))
}

func (r *Registry) renderExplorer(item *content.Item) string {
	children := make([]*content.Item, 0, len(item.Children))
	for _, child := range item.Children {
		if child != nil {
			children = append(children, child)
		}
	}
	return execute(explorerTemplate, children)
}

type viewerData struct {
	Title    string
	Frame    string
	External string
}

// viewer resolves an item's frame source and escape-hatch URL
func (r *Registry) viewer(item *content.Item, target string) viewerData {
	resolved := embed.NormalizeURL(strings.TrimSpace(target))
	return viewerData{
		Title:    item.DisplayName(),
		Frame:    embed.RelayURL(r.opts.RelayBase, resolved),
		External: resolved,
	}
}

func (r *Registry) renderEmbedded(item *content.Item) string {
	return execute(embeddedTemplate, r.viewer(item, item.Target))
}

func (r *Registry) mountEmbedded(h Handle, item *content.Item) {
	v := r.viewer(item, item.Target)
	h.Attach(&ViewerBody{
		kind:     content.AppEmbeddedViewer,
		frame:    v.Frame,
		external: embed.OpenExternal(v.External),
	})
}

func (r *Registry) renderDocument(item *content.Item) string {
	return execute(documentTemplate, r.viewer(item, item.Resource))
}

func (r *Registry) mountDocument(h Handle, item *content.Item) {
	v := r.viewer(item, item.Resource)
	body := &ViewerBody{
		kind:     content.AppDocumentViewer,
		frame:    v.Frame,
		external: embed.OpenExternal(v.External),
		verdict:  embed.VerdictPending,
	}
	h.Attach(body)

	if r.opts.Detector == nil {
		return
	}
	body.watch(r.opts.Detector.Watch(h.Context(), v.External, func(res embed.Result) {
		if body.commit(res) {
			h.Publish(body.State())
		}
	}))
}

func (r *Registry) renderText(item *content.Item) string {
	return execute(textTemplate, template.HTML(r.sanitize.Sanitize(item.Body)))
}

type backgroundOption struct {
	Value   string
	Label   string
	Default bool
}

func (r *Registry) renderSettings(*content.Item) string {
	opts := make([]backgroundOption, 0, len(Backgrounds))
	for _, bg := range Backgrounds {
		opts = append(opts, backgroundOption{Value: bg.Value, Label: bg.Label, Default: bg.Value == DefaultBackground})
	}
	return execute(settingsTemplate, opts)
}

func (r *Registry) mountSettings(h Handle, _ *content.Item) {
	h.Attach(&SettingsBody{background: DefaultBackground, publish: h.Publish})
}

func (r *Registry) renderGame(*content.Item) string {
	return execute(gameTemplate, game.New().Snapshot())
}

func (r *Registry) mountGame(h Handle, _ *content.Item) {
	var picker game.Picker
	if r.opts.NewPicker != nil {
		picker = r.opts.NewPicker()
	}
	session := game.NewSession(r.opts.BotDelay, picker, func(s game.Snapshot) {
		h.Publish(s)
	})
	h.Attach(&GameBody{session: session})
}
