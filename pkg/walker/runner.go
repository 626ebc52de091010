package walker

import (
	"context"
	"errors"
	"fmt"

	igerrors "igposts/pkg/errors"
	"igposts/pkg/instagram"
	"igposts/pkg/logger"
)

// Source resolves accounts and opens their feeds
type Source interface {
	Resolve(ctx context.Context, username string) (*instagram.Profile, error)
	Open(profile *instagram.Profile) PostIterator
}

// InstagramSource adapts an instagram.Client to Source
type InstagramSource struct {
	Client *instagram.Client
}

// Resolve looks up username
func (s InstagramSource) Resolve(ctx context.Context, username string) (*instagram.Profile, error) {
	return s.Client.Resolve(ctx, username)
}

// Open returns the profile's feed
func (s InstagramSource) Open(profile *instagram.Profile) PostIterator {
	return s.Client.Posts(profile)
}

// FetcherFactory returns the fetcher used for walks with the given filter
type FetcherFactory func(Filter) Fetcher

// Outcome is the result of one job run by RunAll
type Outcome struct {
	Options Options
	Result  *Result
	Err     error
}

// Runner resolves an account and walks its feed, reporting through a sink
type Runner struct {
	source   Source
	fetchers FetcherFactory
	layout   DirMaker
	sink     logger.Sink
	logger   logger.Logger
}

// NewRunner creates a Runner
func NewRunner(source Source, fetchers FetcherFactory, layout DirMaker, sink logger.Sink, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		source:   source,
		fetchers: fetchers,
		layout:   layout,
		sink:     sink,
		logger:   log,
	}
}

// FailureMessage is the status line recorded when a walk aborts
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, igerrors.ErrProfileNotExists):
		return "Profile not found."
	case errors.Is(err, igerrors.ErrLoginRequired):
		return "Login required for this profile."
	default:
		return "Error: " + err.Error()
	}
}

// Run executes one walk. Any failure is recorded as a single status line
// and returned; the summary is only recorded for walks that complete.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	log := r.logger.WithFields(map[string]interface{}{
		"username": opts.Username,
		"kind":     opts.Filter.String(),
	})

	if err := opts.Validate(); err != nil {
		return nil, r.fail(log, err)
	}

	r.sink.Record(fmt.Sprintf("Downloading %s up to %d latest posts from @%s, starting from post %d...",
		opts.Filter, opts.MaxPosts, opts.Username, opts.StartPost))

	profile, err := r.source.Resolve(ctx, opts.Username)
	if err != nil {
		return nil, r.fail(log, err)
	}
	log.DebugWithFields("profile resolved", map[string]interface{}{
		"id":    profile.ID,
		"posts": profile.PostCount,
	})

	res, err := Walk(ctx, r.source.Open(profile), opts, r.fetchers(opts.Filter), r.layout, r.sink)
	if err != nil {
		return &res, r.fail(log.WithField("downloaded", res.Downloaded), err)
	}

	r.sink.Record(fmt.Sprintf("Skipped latest posts: %d", res.SkippedStart))
	r.sink.Record(fmt.Sprintf("Skipped %s posts: %d", opts.Filter.skippedKind(), res.SkippedMedia))
	r.sink.Record(fmt.Sprintf("Total skipped posts: %d", res.TotalSkipped()))
	r.sink.Record(fmt.Sprintf("Total downloaded posts: %d", res.Downloaded))
	r.sink.Record("Done!")

	log.InfoWithFields("walk finished", map[string]interface{}{
		"downloaded":    res.Downloaded,
		"skipped_start": res.SkippedStart,
		"skipped_media": res.SkippedMedia,
	})

	return &res, nil
}

func (r *Runner) fail(log logger.Logger, err error) error {
	r.sink.Record(FailureMessage(err))
	log.WithError(err).Warn("walk aborted")
	return err
}

// RunAll runs jobs one after another. A failed job does not stop the ones
// after it; every job gets an Outcome.
func (r *Runner) RunAll(ctx context.Context, jobs []Options) []Outcome {
	outcomes := make([]Outcome, 0, len(jobs))
	for _, job := range jobs {
		res, err := r.Run(ctx, job)
		outcomes = append(outcomes, Outcome{Options: job, Result: res, Err: err})
	}
	return outcomes
}
