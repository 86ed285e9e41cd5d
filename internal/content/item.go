// Package content holds the desktop's read-only tree of files, folders,
// links and apps.
package content

import "strings"

// Kind is the structural type of a content item
type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
	KindLink   Kind = "link"
	KindApp    Kind = "app"
)

// AppKind selects the application that renders an item's window body
type AppKind string

const (
	AppExplorer       AppKind = "explorer"
	AppEmbeddedViewer AppKind = "embedded-viewer"
	AppDocumentViewer AppKind = "document-viewer"
	AppTextViewer     AppKind = "text-viewer"
	AppSettings       AppKind = "settings"
	AppGame           AppKind = "game"
)

// AppKinds lists every application kind the desktop knows how to host
var AppKinds = []AppKind{
	AppExplorer,
	AppEmbeddedViewer,
	AppDocumentViewer,
	AppTextViewer,
	AppSettings,
	AppGame,
}

// ParseAppKind normalizes an application name from a content file. The
// names used by older desktop files ("browser", "pdf-reader") map onto the
// viewer kinds. Unknown names are returned as-is so hosting can degrade
// instead of failing the load.
func ParseAppKind(name string) AppKind {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "browser", "embedded-viewer", "embed":
		return AppEmbeddedViewer
	case "pdf-reader", "document-viewer", "pdf":
		return AppDocumentViewer
	case "text", "text-viewer":
		return AppTextViewer
	default:
		return AppKind(n)
	}
}

// Known reports whether k is one of AppKinds
func (k AppKind) Known() bool {
	for _, known := range AppKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Item is a node in the desktop tree
type Item struct {
	ID   string  `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Kind Kind    `json:"kind" yaml:"kind"`
	Icon string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	App  AppKind `json:"app,omitempty" yaml:"app,omitempty"`

	Children []*Item `json:"children,omitempty" yaml:"children,omitempty"` // folder
	Target   string  `json:"target,omitempty" yaml:"target,omitempty"`     // link / embedded viewer
	Resource string  `json:"resource,omitempty" yaml:"resource,omitempty"` // document viewer
	Body     string  `json:"body,omitempty" yaml:"body,omitempty"`         // text viewer
}

// DisplayName is the item's name, or its id when the name is missing
func (i *Item) DisplayName() string {
	if i == nil {
		return ""
	}
	if strings.TrimSpace(i.Name) != "" {
		return i.Name
	}
	if i.ID != "" {
		return i.ID
	}
	return "Untitled"
}

// IsFolder reports whether the item carries children
func (i *Item) IsFolder() bool {
	return i != nil && (i.Kind == KindFolder || len(i.Children) > 0)
}
