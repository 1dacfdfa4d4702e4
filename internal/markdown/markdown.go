// Package markdown flattens comment text that arrives with markdown or HTML
// formatting so lexicon-based scoring only sees words.
package markdown

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/russross/blackfriday/v2"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?://[^\s)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)

	// Emoticons such as ">:(" or ":\" are not markup and must reach the
	// scorer untouched, so bare '>' and '\' do not count.
	markupPattern = regexp.MustCompile("(?m)\\]\\(|https?://|www\\.|</?[A-Za-z][^>]*>|&#?[A-Za-z0-9]+;|`|\\*\\*|__|^#{1,6}\\s")
)

func ToHTML(md []byte) string {
	// Smartypants stays off so quotes and apostrophes survive untouched.
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML,
	})
	return string(blackfriday.Run(md, blackfriday.WithNoExtensions(), blackfriday.WithRenderer(renderer)))
}

// HasMarkup reports whether s carries links, URLs, HTML, code spans,
// strong emphasis or headings.
func HasMarkup(s string) bool {
	return markupPattern.MatchString(s)
}

// ToPlainText renders md, drops tags, links and URLs, and collapses
// whitespace.
func ToPlainText(md string) string {
	md = RemoveLinks(md)
	text := html.UnescapeString(StripHTMLTags(ToHTML([]byte(md))))
	return strings.Join(strings.Fields(text), " ")
}

// RemoveLinks keeps the label of markdown links and removes bare URLs.
func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
			result.WriteRune(' ')
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}
