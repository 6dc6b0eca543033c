package catalog

import (
	"strings"

	"go-feed-catalog/internal/model"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type DescriptionFormat string

const (
	FormatPlain DescriptionFormat = "plain"
	FormatHTML  DescriptionFormat = "html"
)

// Description joins the short and long descriptions. Plain output has all
// markup removed; HTML output separates the parts with a double break.
func Description(p model.Product, format DescriptionFormat) string {
	var parts []string
	if p.ShortDescription != "" {
		parts = append(parts, p.ShortDescription)
	}
	if p.LongDescription != "" {
		parts = append(parts, p.LongDescription)
	}
	if format == FormatHTML {
		return strings.Join(parts, "<br><br>")
	}
	return StripHTML(strings.Join(parts, "\n\n"))
}

// StripHTML returns the text content of an HTML fragment. Script and style
// bodies are dropped.
func StripHTML(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if a := tagAtom(z); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			if a := tagAtom(z); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}
