package feed

import (
	"strings"

	"lqcli/internal/config"
)

// AudioLink returns the downloadable link an item offers under the given
// content type policy. Items that do not fit the policy have no link.
func AudioLink(item Item, contentType config.ContentType) (string, bool) {
	var link string
	switch contentType {
	case config.ContentTypeRSSAtom:
		link = rssAtomLink(item)
	case config.ContentTypeEnclosure:
		link = enclosureLink(item)
	case config.ContentTypeLink:
		link = primaryLink(item)
	default:
		return "", false
	}
	link = strings.TrimSpace(link)
	return link, link != ""
}

func rssAtomLink(item Item) string {
	switch item.kind {
	case KindRSS:
		return rssEnclosure(item)
	case KindAtom:
		return firstAtomLink(item, "")
	case KindStatic:
		return item.static.url
	default:
		return ""
	}
}

func enclosureLink(item Item) string {
	switch item.kind {
	case KindRSS:
		return rssEnclosure(item)
	case KindAtom:
		return firstAtomLink(item, "enclosure")
	case KindStatic:
		return item.static.url
	default:
		return ""
	}
}

func primaryLink(item Item) string {
	switch item.kind {
	case KindRSS:
		return item.rss.Link
	case KindAtom:
		return firstAtomLink(item, "")
	case KindStatic:
		return item.static.url
	default:
		return ""
	}
}

func rssEnclosure(item Item) string {
	if item.rss.Enclosure == nil {
		return ""
	}
	return item.rss.Enclosure.URL
}

// firstAtomLink returns the href of the first link, or of the first link with
// the given rel when rel is non-empty.
func firstAtomLink(item Item, rel string) string {
	for _, link := range item.atom.Links {
		if link == nil {
			continue
		}
		if rel == "" {
			return link.Href
		}
		if strings.EqualFold(strings.TrimSpace(link.Rel), rel) {
			return link.Href
		}
	}
	return ""
}
