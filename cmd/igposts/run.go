package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igposts/pkg/auth"
	"igposts/pkg/config"
	"igposts/pkg/fetcher"
	"igposts/pkg/instagram"
	"igposts/pkg/logger"
	"igposts/pkg/metrics"
	"igposts/pkg/storage"
	"igposts/pkg/ui"
	"igposts/pkg/walker"
)

// normalizeUsername accepts "@name" and profile-URL style "name/" input
func normalizeUsername(username string) string {
	return instagram.SanitizeUsername(username)
}

// jobsFromConfig turns the configured walks into walker jobs for username
func jobsFromConfig(cfg *config.Config, username string) ([]walker.Options, error) {
	username = normalizeUsername(username)

	jobs := make([]walker.Options, 0, len(cfg.Walks))
	for i, w := range cfg.Walks {
		filter, err := walker.ParseFilter(w.Kind)
		if err != nil {
			return nil, fmt.Errorf("walk %d: %w", i+1, err)
		}
		job := walker.Options{
			Username:  username,
			MaxPosts:  w.MaxPosts,
			StartPost: w.StartPost,
			Filter:    filter,
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("walk %d: %w", i+1, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// fetchOptions maps the fetch section of the config onto fetcher options.
// Video and thumbnail retrieval are set per walk.
func fetchOptions(cfg *config.Config) fetcher.Options {
	return fetcher.Options{
		DownloadComments: cfg.Fetch.DownloadComments,
		SaveMetadata:     cfg.Fetch.SaveMetadata,
		CompressJSON:     cfg.Fetch.CompressJSON,
		SaveCaption:      cfg.Fetch.SaveCaption,
	}
}

// fetcherFactory returns a walker.FetcherFactory building photo or video fetchers
func fetcherFactory(client fetcher.Downloader, store fetcher.Store, base fetcher.Options, log logger.Logger) walker.FetcherFactory {
	photos := fetcher.New(client, store, fetcher.PhotoOptions(base), log)
	videos := fetcher.New(client, store, fetcher.VideoOptions(base), log)
	return func(f walker.Filter) walker.Fetcher {
		if f == walker.VideoOnly {
			return videos
		}
		return photos
	}
}

// summarize condenses the outcomes into a notification line
func summarize(outcomes []walker.Outcome) (string, bool) {
	downloaded, failed := 0, 0
	var failures []string
	for _, o := range outcomes {
		if o.Result != nil {
			downloaded += o.Result.Downloaded
		}
		if o.Err != nil {
			failed++
			failures = append(failures, fmt.Sprintf("%s for @%s", o.Options.Filter, o.Options.Username))
		}
	}

	msg := fmt.Sprintf("%d posts downloaded", downloaded)
	if failed > 0 {
		msg += fmt.Sprintf(", %d of %d walks failed (%s)", failed, len(outcomes), strings.Join(failures, ", "))
	}
	return msg, failed == 0
}

// applySession fills in a stored browser session when none was configured
func applySession(cfg *config.Config, client *instagram.Client, log logger.Logger) {
	sessionID, csrfToken := cfg.Instagram.SessionID, cfg.Instagram.CSRFToken
	if sessionID == "" {
		if dir, err := auth.ConfigDir(); err == nil {
			if manager, err := auth.NewManager(dir); err == nil {
				if s, err := manager.Load(auth.DefaultLabel); err == nil {
					sessionID, csrfToken = s.SessionID, s.CSRFToken
					log.Debug("using stored session")
				}
			}
		}
	}
	client.SetSession(sessionID, csrfToken)
}

func statusOutput(cmd *cobra.Command) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

func runJobs(cmd *cobra.Command, cfg *config.Config, jobs []walker.Options) error {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return err
	}

	statusPath := cfg.Status.LogFile
	if statusPath == "" && writeLogRequested(cmd) {
		statusPath = store.StatusLogPath()
	}
	status, err := logger.NewStatusLog(statusOutput(cmd), statusPath)
	if err != nil {
		return err
	}
	defer status.Close()

	client := instagram.NewClient(cfg.Instagram.Timeout, log)
	if cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}
	applySession(cfg, client, log)

	runner := walker.NewRunner(
		walker.InstagramSource{Client: client},
		fetcherFactory(client, store, fetchOptions(cfg), log),
		store,
		status,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	outcomes := runner.RunAll(ctx, jobs)
	took := time.Since(start)
	log.InfoWithFields("run finished", map[string]interface{}{
		"walks":    len(outcomes),
		"duration": took,
	})

	if cfg.Metrics.TextFile != "" {
		run := metrics.New()
		run.Observe(outcomes, took, time.Now())
		if err := run.WriteTextfile(cfg.Metrics.TextFile); err != nil {
			log.WithError(err).Warn("failed to write metrics textfile")
		}
	}

	if cfg.Notifications.Enabled {
		notifier := ui.NewNotifier(ui.NewConsole(cmd.ErrOrStderr()), ui.PlatformSender())
		msg, ok := summarize(outcomes)
		if ok {
			notifier.SendSuccess("igposts", msg)
		} else {
			notifier.SendError("igposts", msg)
		}
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("interrupted")
	}
	return nil
}
