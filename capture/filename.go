package capture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

const (
	// maxNameLen is the ceiling on a generated filename, extension
	// included. Longer names collapse to the hashed form.
	maxNameLen = 200

	// maxQueryLen bounds how much of the query string survives into
	// the filename.
	maxQueryLen = 32
)

// unsafeChars strips characters that are invalid on at least one of
// the filesystems the output may land on.
var unsafeChars = strings.NewReplacer(
	`\`, "", `/`, "", `*`, "", `?`, "", `:`, "",
	`"`, "", `<`, "", `>`, "", `|`, "",
	" ", "-", "&", "-", "=", "-", "#", "",
)

// Filename derives the deterministic screenshot name for a page from
// its sequence number, domain, path, and truncated query. Identical
// (url, seq) pairs always yield identical names. Names that would
// exceed 200 characters are replaced by a shortened hash-based form.
func Filename(seq int, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return hashedName(seq, "invalid", rawURL)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		host = "unknown"
	}

	p := strings.Trim(u.Path, "/")
	if p == "" {
		p = "index"
	}
	p = strings.ReplaceAll(p, "/", "_")

	name := fmt.Sprintf("%03d_%s_%s", seq, host, p)
	if q := u.RawQuery; q != "" {
		if len(q) > maxQueryLen {
			q = q[:maxQueryLen]
		}
		name += "_" + q
	}
	name = unsafeChars.Replace(name)

	if len(name)+len(".png") > maxNameLen {
		return hashedName(seq, host, rawURL)
	}
	return name + ".png"
}

// hashedName is the short deterministic fallback for oversized or
// unparseable names: sequence, truncated host, and a hash of the URL.
func hashedName(seq int, host, rawURL string) string {
	if len(host) > 40 {
		host = host[:40]
	}
	sum := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("%03d_%s_%s.png", seq, host, hex.EncodeToString(sum[:8]))
}
