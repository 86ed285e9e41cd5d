package content

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"gopkg.in/yaml.v3"
)

// document is the on-disk desktop file. Items may use the field names of
// the Item struct or the older names (type, iconImg, url, content).
type document struct {
	Config  Identity  `yaml:"config"`
	Desktop []rawItem `yaml:"desktop"`
}

type rawItem struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Kind     string    `yaml:"kind"`
	Type     string    `yaml:"type"`
	Icon     string    `yaml:"icon"`
	IconImg  string    `yaml:"iconImg"`
	App      string    `yaml:"app"`
	Target   string    `yaml:"target"`
	URL      string    `yaml:"url"`
	Resource string    `yaml:"resource"`
	Body     string    `yaml:"body"`
	Children []rawItem `yaml:"children"`
	Content  yaml.Node `yaml:"content"`
}

// Load reads a desktop file from disk
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse builds a tree from YAML (or JSON, which YAML accepts). Items
// without an id are skipped with a warning; duplicate ids still fail the
// load because window identity depends on them.
func Parse(data []byte) (*Tree, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	return NewTree(doc.Config, convertAll(doc.Desktop, "desktop"))
}

func convertAll(raw []rawItem, path string) []*Item {
	items := make([]*Item, 0, len(raw))
	for i := range raw {
		if raw[i].ID == "" {
			logger.WithComponent("content").Warn().
				Str("at", fmt.Sprintf("%s[%d]", path, i)).
				Str("name", raw[i].Name).
				Msg("Skipping content item without id")
			continue
		}
		items = append(items, raw[i].convert(path+"/"+raw[i].ID))
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (r *rawItem) convert(path string) *Item {
	item := &Item{
		ID:       r.ID,
		Name:     r.Name,
		Kind:     Kind(firstNonEmpty(r.Kind, r.Type)),
		Icon:     firstNonEmpty(r.Icon, r.IconImg),
		App:      ParseAppKind(r.App),
		Target:   firstNonEmpty(r.Target, r.URL),
		Resource: r.Resource,
		Body:     r.Body,
	}

	children := r.Children

	// "content" is overloaded: a child list for folders, a resource path for
	// documents, markup for text
	switch r.Content.Kind {
	case yaml.SequenceNode:
		var nested []rawItem
		if err := r.Content.Decode(&nested); err != nil {
			logger.WithComponent("content").Warn().
				Err(err).
				Str("id", r.ID).
				Msg("Ignoring invalid content list")
		} else {
			children = append(children, nested...)
		}
	case yaml.ScalarNode:
		if item.App == AppDocumentViewer && item.Resource == "" {
			item.Resource = r.Content.Value
		} else if item.Body == "" {
			item.Body = r.Content.Value
		}
	}

	item.Children = convertAll(children, path)
	if len(item.Children) == 0 {
		item.Children = nil
	}

	if item.Kind == "" {
		if len(item.Children) > 0 {
			item.Kind = KindFolder
		} else {
			item.Kind = KindFile
		}
	}

	return item
}
