// Package lingq talks to the LingQ lesson catalog: it lists the lesson titles
// of a course and imports new lessons with optional audio.
//
// Requests are spaced by the configured delay through a token bucket limiter
// shared by all calls made with one Client.
package lingq
