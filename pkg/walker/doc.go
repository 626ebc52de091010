// Package walker implements the download walk over an account's feed.
//
// Walk is the loop itself: it skips posts before the start position, skips
// posts of the wrong media kind, fetches the rest and stops at the download
// cap. Runner wraps it with account resolution, failure classification and
// the end-of-walk summary, all reported through a logger.Sink.
package walker
