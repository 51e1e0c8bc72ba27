// Package feed normalizes syndication feeds into a single Item model and
// decides which audio link, if any, each item offers.
//
// A Resolver fetches a feed URL and decodes it as RSS first, then Atom. The
// first format that parses wins. AudioLink applies a source's content type
// policy to one item; it never fails, an unusable item simply has no link.
package feed
