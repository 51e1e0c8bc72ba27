package feed

import (
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// Format names the syndication format a feed was decoded as.
type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
)

// Feed is a decoded feed with its items in document order.
type Feed struct {
	Format Format
	Title  string
	items  []Item
}

func newRSSFeed(doc *rss.Feed) *Feed {
	items := make([]Item, 0, len(doc.Items))
	for _, entry := range doc.Items {
		if entry == nil {
			continue
		}
		items = append(items, FromRSS(entry))
	}
	return &Feed{Format: FormatRSS, Title: doc.Title, items: items}
}

func newAtomFeed(doc *atom.Feed) *Feed {
	items := make([]Item, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		if entry == nil {
			continue
		}
		items = append(items, FromAtom(entry))
	}
	return &Feed{Format: FormatAtom, Title: doc.Title, items: items}
}

// Len returns the number of items in the feed.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

// Items returns the first min(n, Len()) items in feed order. Feeds are assumed
// to list newest entries first. A non-positive n yields an empty slice.
func (f *Feed) Items(n int) []Item {
	if f == nil || n <= 0 {
		return []Item{}
	}
	if n > len(f.items) {
		n = len(f.items)
	}
	out := make([]Item, n)
	copy(out, f.items[:n])
	return out
}
