// Package moduleid normalizes module specifiers into canonical lookup keys.
//
// Three specifier shapes exist: relative specifiers ("./x", "../x"), which
// are left untouched because resolution against the importer happens
// downstream; server-rooted paths ("/src/x.js"), which are already
// canonical; and everything else, which is treated as a virtual module and
// wrapped into the reserved "/@id/" addressing convention.
package moduleid

import (
	"path"
	"path/filepath"
	"strings"
)

// VirtualPrefix is the reserved prefix for virtual-module identities.
const VirtualPrefix = "/@id/"

// nullByteMark replaces NUL bytes in virtual ids so they survive being
// carried inside URL-shaped strings.
const nullByteMark = "__x00__"

// IsRelative reports whether a specifier starts with a relative-path marker.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Wrap converts an id into the virtual-module addressing convention.
// Wrapping an already-wrapped id is a no-op.
func Wrap(id string) string {
	if strings.HasPrefix(id, VirtualPrefix) {
		return id
	}
	return VirtualPrefix + strings.ReplaceAll(id, "\x00", nullByteMark)
}

// Unwrap reverses Wrap. Ids outside the virtual convention pass through.
func Unwrap(id string) string {
	if !strings.HasPrefix(id, VirtualPrefix) {
		return id
	}
	return strings.ReplaceAll(id[len(VirtualPrefix):], nullByteMark, "\x00")
}

// NormalizeEntry turns a user-supplied or import-site specifier into a
// canonical lookup key against the configured root directory. It is
// idempotent: normalizing an already-normalized identity yields the same
// identity.
func NormalizeEntry(root, url string) string {
	if IsRelative(url) {
		return url
	}
	// Data URIs are self-describing and never wrapped.
	if strings.HasPrefix(url, "data:") {
		return url
	}
	root = withTrailingSlash(root)
	if strings.HasPrefix(url, root) {
		// Keep the leading separator so the result stays server-rooted.
		url = url[len(root)-1:]
	}
	if strings.HasPrefix(url, "/") {
		return url
	}
	return Wrap(url)
}

// Query returns the query suffix of a URL including the leading "?", or an
// empty string when the URL carries none.
func Query(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[i:]
	}
	return ""
}

// StripQuery returns the URL without its query suffix.
func StripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// Dirname returns the directory portion of a slash-separated module path.
func Dirname(p string) string {
	return path.Dir(p)
}

// OSPath converts a slash-separated module path into the host separator
// convention, for surfaces that promise OS-appropriate paths.
func OSPath(p string) string {
	return filepath.FromSlash(p)
}

// FileHref renders a module file path as a file:// address form.
func FileHref(p string) string {
	p = filepath.ToSlash(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

func withTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
