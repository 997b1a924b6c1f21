package capture

import (
	"strings"
	"testing"
)

func TestFilename_Deterministic(t *testing.T) {
	url := "https://example.com/products/widgets?page=2&sort=asc"
	a := Filename(3, url)
	b := Filename(3, url)
	if a != b {
		t.Errorf("same (url, seq) produced different names: %q vs %q", a, b)
	}

	c := Filename(4, url)
	if a == c {
		t.Errorf("different seq should produce a different name: %q", a)
	}
}

func TestFilename_Components(t *testing.T) {
	got := Filename(1, "https://www.Example.com/about/team")
	want := "001_example.com_about_team.png"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}

	if got := Filename(2, "https://example.com/"); got != "002_example.com_index.png" {
		t.Errorf("root page name = %q", got)
	}
}

func TestFilename_QueryTruncated(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := Filename(1, "https://example.com/search?q="+long)
	if len(got) > 60 {
		t.Errorf("query was not truncated: %q", got)
	}
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("missing extension: %q", got)
	}
}

func TestFilename_NoUnsafeCharacters(t *testing.T) {
	urls := []string{
		`https://example.com/a/b?q=hello world&x="quoted"`,
		`https://example.com/weird*path?a=<b>|c:d`,
		"https://example.com/" + strings.Repeat("segment/", 60),
	}
	for _, u := range urls {
		name := Filename(7, u)
		if strings.ContainsAny(name, `\/*?:"<>|`) {
			t.Errorf("unsafe characters in %q (from %s)", name, u)
		}
		if len(name) > 200 {
			t.Errorf("name exceeds 200 chars (%d): %q", len(name), name)
		}
	}
}

func TestFilename_LongURLHashed(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("deep/", 80) + "page"
	a := Filename(9, long)
	b := Filename(9, long)
	if a != b {
		t.Error("hashed fallback must stay deterministic")
	}
	if len(a) > 200 {
		t.Errorf("hashed name still too long: %d chars", len(a))
	}
	if !strings.HasPrefix(a, "009_example.com_") {
		t.Errorf("hashed name should keep seq and host prefix: %q", a)
	}
}
