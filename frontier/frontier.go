// Package frontier holds the crawl frontier: URL canonicalization,
// domain scoping, and the FIFO queue of pages awaiting a visit.
package frontier

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// downloadableExts are path extensions that identify non-page resources
// (documents, archives, media, images). Detection is by extension only,
// not response Content-Type.
var downloadableExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".csv": true, ".rtf": true, ".txt": true,
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true, ".bz2": true,
	".dmg": true, ".exe": true, ".msi": true, ".apk": true, ".iso": true,
	".mp3": true, ".mp4": true, ".wav": true, ".avi": true, ".mov": true,
	".wmv": true, ".webm": true, ".mkv": true, ".flv": true, ".ogg": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".bmp": true, ".tiff": true,
}

// Normalize returns the canonical form of a URL: lowercase scheme and
// host, no leading "www.", no fragment, empty path collapsed to "/",
// trailing slash removed except for the root. Normalize is idempotent.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("frontier: parse %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("frontier: %q is not an absolute URL", raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	u.Fragment = ""

	if u.Path == "" {
		u.Path = "/"
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// SameDomain reports whether two URLs share a host, ignoring case and
// a leading "www.".
func SameDomain(base, candidate string) bool {
	b, err := url.Parse(base)
	if err != nil {
		return false
	}
	c, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	bh := strings.TrimPrefix(strings.ToLower(b.Hostname()), "www.")
	ch := strings.TrimPrefix(strings.ToLower(c.Hostname()), "www.")
	return bh != "" && bh == ch
}

// IsDownloadable reports whether the URL points at a non-page resource
// that should be skipped without opening a browsing context.
func IsDownloadable(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return downloadableExts[strings.ToLower(path.Ext(u.Path))]
}

// Frontier pairs the FIFO queue of canonical URLs pending a visit with
// the set of canonical URLs already visited. A canonical URL never
// appears in both, and never twice in the queue; dedup is enforced at
// insertion. The orchestrator is single-threaded, so Frontier is not
// safe for concurrent use.
type Frontier struct {
	queue   []string
	queued  map[string]bool
	visited map[string]bool
}

// New creates an empty Frontier.
func New() *Frontier {
	return &Frontier{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// Enqueue normalizes the URL and appends it to the queue unless its
// canonical form is already queued or visited. It returns the canonical
// form and whether the URL was added.
func (f *Frontier) Enqueue(raw string) (string, bool) {
	canonical, err := Normalize(raw)
	if err != nil {
		return "", false
	}
	if f.queued[canonical] || f.visited[canonical] {
		return canonical, false
	}
	f.queued[canonical] = true
	f.queue = append(f.queue, canonical)
	return canonical, true
}

// Pop removes and returns the next canonical URL, or false when the
// queue is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, u)
	return u, true
}

// MarkVisited records a canonical URL as visited.
func (f *Frontier) MarkVisited(canonical string) {
	f.visited[canonical] = true
}

// Visited reports whether a canonical URL has been visited.
func (f *Frontier) Visited(canonical string) bool {
	return f.visited[canonical]
}

// Pending returns the number of URLs awaiting a visit.
func (f *Frontier) Pending() int {
	return len(f.queue)
}
