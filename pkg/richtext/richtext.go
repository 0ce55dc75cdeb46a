// Package richtext extracts structured fragments from the HTML bodies the
// timeline API serves. Post text arrives as markup with inline anchors for
// topics, mentions and location badges; this package gives the rest of the
// pipeline a plain-text view plus selectors for those fragments.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// locationIcon marks the span pair that carries a check-in location. The
// icon img is followed by a span holding the place name.
const locationIcon = "timeline_card_small_location_default.png"

// Document is a parsed rich-text post body
type Document struct {
	doc *goquery.Document
}

// Parse parses an HTML fragment into a Document. Malformed markup never
// fails outright; the html parser repairs what it can, so the zero-value
// fallback is an empty document rather than an error.
func Parse(html string) *Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return &Document{doc: doc}
}

// PlainText returns the body with all markup stripped
func (d *Document) PlainText() string {
	return d.doc.Text()
}

// Location returns the check-in place name, or "" when the post has none.
// The location badge is an icon img followed by a span with the place text.
func (d *Document) Location() string {
	location := ""
	d.doc.Find("span").EachWithBreak(func(i int, s *goquery.Selection) bool {
		img := s.Find("img")
		src, ok := img.Attr("src")
		if !ok || !strings.Contains(src, locationIcon) {
			return true
		}
		location = strings.TrimSpace(s.Next().Text())
		return false
	})
	return location
}

// Topics returns the hashtag topics mentioned in the body, with the
// surrounding # delimiters stripped.
func (d *Document) Topics() []string {
	var topics []string
	d.doc.Find("span.surl-text").Each(func(i int, s *goquery.Selection) {
		text := s.Text()
		runes := []rune(text)
		if len(runes) > 2 && runes[0] == '#' && runes[len(runes)-1] == '#' {
			topics = append(topics, string(runes[1:len(runes)-1]))
		}
	})
	return topics
}

// AtUsers returns the screen names mentioned with @ in the body. A mention
// anchor's text is @name and its href ends with the same name.
func (d *Document) AtUsers() []string {
	var users []string
	d.doc.Find("a").Each(func(i int, s *goquery.Selection) {
		text := s.Text()
		href, ok := s.Attr("href")
		if !ok || len(href) <= 3 {
			return
		}
		if text == "@"+href[3:] {
			users = append(users, strings.TrimPrefix(text, "@"))
		}
	})
	return users
}
