// Package language validates and normalizes the language codes attached to
// configured sources.
//
// The lesson catalog addresses courses by ISO 639-1 codes, so every source
// language is reduced to its two-letter form here using golang.org/x/text.
package language
