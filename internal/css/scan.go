package css

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/net/html"
)

// classToken matches anything that could be a utility class reference,
// including responsive variants ("md:wd-flex").
var classToken = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9_:/-]*`)

// ScanContent walks the theme's content globs (relative to root) and
// collects every token that could be a class name. HTML files are scanned
// through their class attributes; template and script files are scanned as
// raw token soup, which over-collects but never misses a reference.
// Globs that match nothing contribute nothing; that is not an error.
func ScanContent(root string, globs []string) (map[string]struct{}, error) {
	used := make(map[string]struct{})
	fsys := os.DirFS(root)

	for _, pattern := range globs {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern))
		if err != nil {
			return nil, err
		}
		for _, rel := range matches {
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return nil, err
			}
			if strings.EqualFold(filepath.Ext(rel), ".html") {
				scanHTML(data, used)
			} else {
				scanTokens(data, used)
			}
		}
	}
	return used, nil
}

// scanHTML collects class attribute values from an HTML document.
func scanHTML(data []byte, used map[string]struct{}) {
	tz := html.NewTokenizer(strings.NewReader(string(data)))
	for {
		tt := tz.Next()
		if tt == html.ErrorToken {
			return
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		for {
			key, val, more := tz.TagAttr()
			if string(key) == "class" {
				for _, c := range strings.Fields(string(val)) {
					used[c] = struct{}{}
				}
			}
			if !more {
				break
			}
		}
	}
}

// scanTokens collects every class-shaped token from a non-HTML file.
func scanTokens(data []byte, used map[string]struct{}) {
	for _, tok := range classToken.FindAllString(string(data), -1) {
		used[tok] = struct{}{}
	}
}
