package feed

import (
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// Kind identifies which variant an Item holds.
type Kind int

const (
	// KindRSS wraps an RSS 2.0 item.
	KindRSS Kind = iota + 1
	// KindAtom wraps an Atom entry.
	KindAtom
	// KindStatic is a literal link supplied by the user.
	KindStatic
)

func (k Kind) String() string {
	switch k {
	case KindRSS:
		return "rss"
	case KindAtom:
		return "atom"
	case KindStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Item is one entry of content. Exactly one of the variant payloads is set,
// selected by Kind. The zero Item has no variant and yields neither title nor link.
type Item struct {
	kind   Kind
	rss    *rss.Item
	atom   *atom.Entry
	static staticLink
}

type staticLink struct {
	url   string
	title string
}

// FromRSS wraps a decoded RSS item.
func FromRSS(item *rss.Item) Item {
	if item == nil {
		return Item{}
	}
	return Item{kind: KindRSS, rss: item}
}

// FromAtom wraps a decoded Atom entry.
func FromAtom(entry *atom.Entry) Item {
	if entry == nil {
		return Item{}
	}
	return Item{kind: KindAtom, atom: entry}
}

// NewStatic builds an item from a user-supplied link and title.
func NewStatic(url, title string) Item {
	return Item{kind: KindStatic, static: staticLink{url: url, title: title}}
}

// Kind reports the item variant.
func (i Item) Kind() Kind {
	return i.kind
}

// Title returns the item title. The boolean is false when the source carries
// no usable title.
func (i Item) Title() (string, bool) {
	var title string
	switch i.kind {
	case KindRSS:
		title = i.rss.Title
	case KindAtom:
		title = i.atom.Title
	case KindStatic:
		title = i.static.title
	default:
		return "", false
	}
	title = strings.TrimSpace(title)
	return title, title != ""
}
