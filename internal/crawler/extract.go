package crawler

import (
	"io"

	"golang.org/x/net/html"
)

// Candidates are raw link strings found in one page body.
type Candidates struct {
	// Pages are the href values of <a> tags.
	Pages []string

	// Resources are the src values of <img> tags.
	Resources []string
}

// linkAttrs maps the tags we extract from to the attribute holding the link.
var linkAttrs = map[string]string{
	"a":   "href",
	"img": "src",
}

// ExtractLinks tokenizes an HTML body and collects link candidates.
// Values are returned verbatim, without trimming or resolving, and every
// href or src on a tag is collected.
//
// The tokenizer is lenient with broken markup. A read error other than EOF
// ends extraction and whatever was collected so far is returned.
func ExtractLinks(r io.Reader) Candidates {
	var c Candidates
	z := html.NewTokenizer(r)

	for {
		switch z.Next() {
		case html.ErrorToken:
			return c
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			tag := string(name)
			want, ok := linkAttrs[tag]
			if !ok {
				continue
			}
			// A repeated attribute yields one candidate per occurrence.
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				if string(key) != want {
					continue
				}
				if tag == "a" {
					c.Pages = append(c.Pages, string(val))
				} else {
					c.Resources = append(c.Resources, string(val))
				}
			}
		default:
		}
	}
}
