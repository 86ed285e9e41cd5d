// Package embed resolves what a viewer window frames and detects remote
// content that refuses to be framed.
package embed

import (
	"net/url"
	"regexp"
	"strings"
)

// videoID matches the watch, share, embed and /v/ forms of the video host
// and captures the id segment in group 7
var videoID = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

// VideoIDLength is the length of a recognised video id
const VideoIDLength = 11

// EmbedBase is the canonical embeddable form for recognised video URLs
const EmbedBase = "https://www.youtube.com/embed/"

// NormalizeURL rewrites recognised video URLs to their embeddable form and
// returns anything else unchanged
func NormalizeURL(target string) string {
	m := videoID.FindStringSubmatch(target)
	if m == nil || len(m[7]) != VideoIDLength {
		return target
	}
	return EmbedBase + m[7]
}

// External describes the "open in new tab" escape hatch
type External struct {
	URL      string `json:"url"`
	Target   string `json:"target"`
	Features string `json:"features"`
}

// popupFeatures asks for a minimal-chrome popup; browsers may still open a tab
const popupFeatures = "toolbar=0,location=0,status=0,menubar=0,scrollbars=1,resizable=1,width=1000,height=700"

// OpenExternal returns the escape hatch for a resolved URL
func OpenExternal(resolved string) External {
	return External{URL: resolved, Target: "_blank", Features: popupFeatures}
}

// RelayURL routes target through the relay endpoint at base
// (e.g. "http://localhost:3000/proxy"). Relative targets and an empty base
// are returned unchanged.
func RelayURL(base, target string) string {
	if base == "" || !IsAbsolute(target) {
		return target
	}
	u, err := url.Parse(base)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set("url", target)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsAbsolute reports whether target is an absolute http(s) URL
func IsAbsolute(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
