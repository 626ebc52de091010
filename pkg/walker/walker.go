package walker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"igposts/pkg/config"
	"igposts/pkg/instagram"
	"igposts/pkg/logger"
)

// Filter selects which kind of post a walk downloads
type Filter int

const (
	// PhotoOnly downloads image and sidecar posts and skips videos
	PhotoOnly Filter = iota
	// VideoOnly downloads video posts and skips everything else
	VideoOnly
)

// ParseFilter maps a walk kind ("photos" or "videos") to a Filter
func ParseFilter(kind string) (Filter, error) {
	normalized, ok := config.NormalizeKind(kind)
	if !ok {
		return PhotoOnly, fmt.Errorf("unknown walk kind %q", kind)
	}
	if normalized == config.KindVideos {
		return VideoOnly, nil
	}
	return PhotoOnly, nil
}

// String returns the plural kind name used in status messages
func (f Filter) String() string {
	if f == VideoOnly {
		return "videos"
	}
	return "photos"
}

// Matches reports whether post is of the kind the filter downloads
func (f Filter) Matches(post *instagram.Post) bool {
	return post.IsVideo == (f == VideoOnly)
}

// skippedKind names the kind of post the filter rejects
func (f Filter) skippedKind() string {
	if f == VideoOnly {
		return "photo"
	}
	return "video"
}

// Options configures one walk
type Options struct {
	Username  string
	MaxPosts  int
	StartPost int
	Filter    Filter
}

// Validate checks the walk options
func (o Options) Validate() error {
	var errs []error
	if o.Username == "" {
		errs = append(errs, errors.New("username is required"))
	} else if !instagram.IsValidUsername(o.Username) {
		errs = append(errs, fmt.Errorf("invalid username %q", o.Username))
	}
	if o.MaxPosts < 1 {
		errs = append(errs, errors.New("max posts must be at least 1"))
	}
	if o.StartPost < 1 {
		errs = append(errs, errors.New("start post must be at least 1"))
	}
	return errors.Join(errs...)
}

// Result holds the counters of a finished walk
type Result struct {
	Downloaded   int
	SkippedStart int
	SkippedMedia int
}

// TotalSkipped is the number of posts skipped for any reason
func (r Result) TotalSkipped() int {
	return r.SkippedStart + r.SkippedMedia
}

// PostIterator yields posts newest first
type PostIterator interface {
	Next(ctx context.Context) bool
	Post() *instagram.Post
	Err() error
}

// Fetcher materializes one post into a directory
type Fetcher interface {
	Fetch(ctx context.Context, post *instagram.Post, dest string) error
}

// DirMaker returns the directory for a post, creating it if needed
type DirMaker interface {
	PostDir(username string, taken time.Time) (string, error)
}

// Walk makes one pass over feed. For every post it first checks the
// download cap, then the start position, then the media kind; a post that
// passes all three is fetched into its own directory.
//
// The walk ends when the feed is exhausted or the cap is hit. A feed or
// fetch error ends it early and is returned with the counters so far.
func Walk(ctx context.Context, feed PostIterator, opts Options, fetch Fetcher, layout DirMaker, sink logger.Sink) (Result, error) {
	var res Result
	position := 1

	for feed.Next(ctx) {
		post := feed.Post()

		if res.Downloaded >= opts.MaxPosts {
			sink.Record("Reached maximum number of posts to download.")
			return res, nil
		}

		if position < opts.StartPost {
			sink.Record(fmt.Sprintf("Skipping post %d: %s", position, post.Shortcode))
			res.SkippedStart++
			position++
			continue
		}

		if !opts.Filter.Matches(post) {
			sink.Record(fmt.Sprintf("Skipping %s post: %s", opts.Filter.skippedKind(), post.Shortcode))
			res.SkippedMedia++
			position++
			continue
		}

		dir, err := layout.PostDir(opts.Username, post.DateUTC)
		if err != nil {
			return res, err
		}
		if err := fetch.Fetch(ctx, post, dir); err != nil {
			return res, fmt.Errorf("post %s: %w", post.Shortcode, err)
		}

		res.Downloaded++
		sink.Record(fmt.Sprintf("Downloaded posts %d: %s", res.Downloaded, post.Shortcode))
		position++
	}

	if err := feed.Err(); err != nil {
		return res, err
	}
	return res, nil
}
