// Package fetcher writes the artifacts of a single post into its directory.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"igposts/pkg/instagram"
	"igposts/pkg/logger"
	"igposts/pkg/metadata"
	"igposts/pkg/storage"
)

// Downloader streams the bytes behind a media URL
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Store persists files inside a post directory
type Store interface {
	SaveFile(dir, name string, r io.Reader) (int64, error)
	Exists(path string) bool
}

// Options selects which artifacts are written for a post
type Options struct {
	DownloadVideos          bool
	DownloadVideoThumbnails bool
	DownloadComments        bool
	SaveMetadata            bool
	CompressJSON            bool
	SaveCaption             bool
}

// PhotoOptions returns base adjusted for a photo walk: no video files, no thumbnails
func PhotoOptions(base Options) Options {
	base.DownloadVideos = false
	base.DownloadVideoThumbnails = false
	return base
}

// VideoOptions returns base adjusted for a video walk: videos and their thumbnails
func VideoOptions(base Options) Options {
	base.DownloadVideos = true
	base.DownloadVideoThumbnails = true
	return base
}

// Fetcher saves a post's media, caption, comments and metadata
type Fetcher struct {
	client Downloader
	store  Store
	opts   Options
	logger logger.Logger
	now    func() time.Time
}

// New creates a Fetcher
func New(client Downloader, store Store, opts Options, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		client: client,
		store:  store,
		opts:   opts,
		logger: log,
		now:    time.Now,
	}
}

// Options returns the options the fetcher was created with
func (f *Fetcher) Options() Options {
	return f.opts
}

type mediaFile struct {
	name string
	url  string
}

// Fetch writes every selected artifact of post into dest. Files that already
// exist are left untouched. The first failure aborts the remaining artifacts.
func (f *Fetcher) Fetch(ctx context.Context, post *instagram.Post, dest string) error {
	stem := storage.DirName(post.DateUTC)

	for _, m := range f.mediaFiles(post, stem) {
		if err := f.download(ctx, dest, m); err != nil {
			return err
		}
	}

	if f.opts.SaveCaption && strings.TrimSpace(post.Caption) != "" {
		if err := f.save(dest, stem+".txt", strings.NewReader(post.Caption)); err != nil {
			return err
		}
	}

	if f.opts.DownloadComments {
		buf, err := metadata.Encode(metadata.Comments(post), false)
		if err != nil {
			return err
		}
		if err := f.save(dest, stem+"_comments.json", buf); err != nil {
			return err
		}
	}

	if f.opts.SaveMetadata {
		buf, err := metadata.Encode(metadata.FromPost(post, f.now()), f.opts.CompressJSON)
		if err != nil {
			return err
		}
		if err := f.save(dest, metadata.FileName(stem, f.opts.CompressJSON), buf); err != nil {
			return err
		}
	}

	return nil
}

// mediaFiles lists the media to download for post, honouring the video options.
// Sidecar children are numbered from 1.
func (f *Fetcher) mediaFiles(post *instagram.Post, stem string) []mediaFile {
	if post.IsSidecar() && len(post.Children) > 0 {
		var files []mediaFile
		for i, child := range post.Children {
			files = append(files, f.itemFiles(fmt.Sprintf("%s_%d", stem, i+1), child.IsVideo, child.DisplayURL, child.VideoURL)...)
		}
		return files
	}
	return f.itemFiles(stem, post.IsVideo, post.DisplayURL, post.VideoURL)
}

func (f *Fetcher) itemFiles(name string, isVideo bool, displayURL, videoURL string) []mediaFile {
	if !isVideo {
		return []mediaFile{{name: name + ".jpg", url: displayURL}}
	}

	var files []mediaFile
	if f.opts.DownloadVideos && videoURL != "" {
		files = append(files, mediaFile{name: name + ".mp4", url: videoURL})
	}
	if f.opts.DownloadVideoThumbnails && displayURL != "" {
		files = append(files, mediaFile{name: name + ".jpg", url: displayURL})
	}
	return files
}

func (f *Fetcher) download(ctx context.Context, dest string, m mediaFile) error {
	if f.store.Exists(filepath.Join(dest, m.name)) {
		f.logger.DebugWithFields("file already exists, skipping", map[string]interface{}{
			"file": m.name,
			"dir":  dest,
		})
		return nil
	}

	body, err := f.client.Download(ctx, m.url)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", m.name, err)
	}
	defer body.Close()

	size, err := f.store.SaveFile(dest, m.name, body)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", m.name, err)
	}

	f.logger.DebugWithFields("saved media", map[string]interface{}{
		"file": m.name,
		"size": size,
	})
	return nil
}

func (f *Fetcher) save(dest, name string, r io.Reader) error {
	if f.store.Exists(filepath.Join(dest, name)) {
		return nil
	}
	if _, err := f.store.SaveFile(dest, name, r); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}
