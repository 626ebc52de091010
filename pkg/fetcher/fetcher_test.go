package fetcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"igposts/pkg/instagram"
	"igposts/pkg/logger"
	"igposts/pkg/metadata"
	"igposts/pkg/storage"
)

const stem = "2024-03-09_17-04-05_UTC"

var taken = time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC)

type mockDownloader struct {
	mock.Mock
}

func (m *mockDownloader) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	args := m.Called(ctx, url)
	if rc, ok := args.Get(0).(io.ReadCloser); ok {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func setup(t *testing.T) (*mockDownloader, *storage.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewManager(dir)
	require.NoError(t, err)
	return &mockDownloader{}, store, dir
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestFetchPhoto(t *testing.T) {
	client, store, dir := setup(t)
	client.On("Download", mock.Anything, "https://cdn.example/p.jpg").Return(body("jpeg"), nil).Once()

	post := &instagram.Post{Shortcode: "P", Typename: instagram.TypeImage, DateUTC: taken, DisplayURL: "https://cdn.example/p.jpg", Caption: "hello"}
	f := New(client, store, PhotoOptions(Options{SaveCaption: true}), logger.NewNopLogger())

	require.NoError(t, f.Fetch(context.Background(), post, dir))

	assert.Equal(t, []string{stem + ".jpg", stem + ".txt"}, listFiles(t, dir))
	caption, err := os.ReadFile(filepath.Join(dir, stem+".txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(caption))
	client.AssertExpectations(t)
}

func TestFetchVideoHonoursOptions(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantFiles []string
		wantURLs  []string
	}{
		{
			name:      "video walk fetches video and thumbnail",
			opts:      VideoOptions(Options{}),
			wantFiles: []string{stem + ".jpg", stem + ".mp4"},
			wantURLs:  []string{"https://cdn.example/v.mp4", "https://cdn.example/v.jpg"},
		},
		{
			name:      "photo options fetch nothing for a video",
			opts:      PhotoOptions(Options{DownloadVideos: true}),
			wantFiles: nil,
			wantURLs:  nil,
		},
		{
			name:      "video without thumbnail",
			opts:      Options{DownloadVideos: true},
			wantFiles: []string{stem + ".mp4"},
			wantURLs:  []string{"https://cdn.example/v.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, store, dir := setup(t)
			for _, u := range tt.wantURLs {
				client.On("Download", mock.Anything, u).Return(body(u), nil).Once()
			}

			post := &instagram.Post{
				Shortcode:  "V",
				Typename:   instagram.TypeVideo,
				DateUTC:    taken,
				IsVideo:    true,
				DisplayURL: "https://cdn.example/v.jpg",
				VideoURL:   "https://cdn.example/v.mp4",
			}
			require.NoError(t, New(client, store, tt.opts, logger.NewNopLogger()).Fetch(context.Background(), post, dir))

			assert.Equal(t, tt.wantFiles, listFiles(t, dir))
			client.AssertExpectations(t)
			client.AssertNumberOfCalls(t, "Download", len(tt.wantURLs))
		})
	}
}

func TestFetchSidecarNumbersChildren(t *testing.T) {
	client, store, dir := setup(t)
	client.On("Download", mock.Anything, "https://cdn.example/1.jpg").Return(body("1"), nil).Once()
	client.On("Download", mock.Anything, "https://cdn.example/2.mp4").Return(body("2"), nil).Once()
	client.On("Download", mock.Anything, "https://cdn.example/2.jpg").Return(body("2t"), nil).Once()

	post := &instagram.Post{
		Shortcode: "S",
		Typename:  instagram.TypeSidecar,
		DateUTC:   taken,
		Children: []instagram.Media{
			{DisplayURL: "https://cdn.example/1.jpg"},
			{DisplayURL: "https://cdn.example/2.jpg", VideoURL: "https://cdn.example/2.mp4", IsVideo: true},
		},
	}
	require.NoError(t, New(client, store, VideoOptions(Options{}), logger.NewNopLogger()).Fetch(context.Background(), post, dir))

	assert.Equal(t, []string{stem + "_1.jpg", stem + "_2.jpg", stem + "_2.mp4"}, listFiles(t, dir))
	client.AssertExpectations(t)
}

func TestFetchSkipsExistingFiles(t *testing.T) {
	client, store, dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".jpg"), []byte("old"), 0644))

	post := &instagram.Post{Shortcode: "P", Typename: instagram.TypeImage, DateUTC: taken, DisplayURL: "https://cdn.example/p.jpg"}
	require.NoError(t, New(client, store, Options{}, logger.NewNopLogger()).Fetch(context.Background(), post, dir))

	data, err := os.ReadFile(filepath.Join(dir, stem+".jpg"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	client.AssertNotCalled(t, "Download", mock.Anything, mock.Anything)
}

func TestFetchWritesCommentsAndMetadata(t *testing.T) {
	tests := []struct {
		name     string
		compress bool
		metaFile string
	}{
		{name: "plain json", compress: false, metaFile: stem + ".json"},
		{name: "xz json", compress: true, metaFile: stem + ".json.xz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, store, dir := setup(t)
			client.On("Download", mock.Anything, "https://cdn.example/p.jpg").Return(body("jpeg"), nil)

			post := &instagram.Post{
				ID:         "9",
				Shortcode:  "P",
				Typename:   instagram.TypeImage,
				DateUTC:    taken,
				DisplayURL: "https://cdn.example/p.jpg",
				Comments:   []instagram.Comment{{ID: "c1", Text: "nice", CreatedAt: taken, Owner: instagram.Owner{Username: "fan"}}},
			}
			f := New(client, store, Options{DownloadComments: true, SaveMetadata: true, CompressJSON: tt.compress}, logger.NewNopLogger())
			f.now = func() time.Time { return taken.Add(time.Hour) }

			require.NoError(t, f.Fetch(context.Background(), post, dir))

			assert.Equal(t, []string{stem + ".jpg", tt.metaFile, stem + "_comments.json"}, listFiles(t, dir))

			meta, err := metadata.Load(filepath.Join(dir, tt.metaFile))
			require.NoError(t, err)
			assert.Equal(t, "P", meta.Shortcode)
			assert.Equal(t, taken.Add(time.Hour), meta.DownloadedAt)

			comments, err := os.ReadFile(filepath.Join(dir, stem+"_comments.json"))
			require.NoError(t, err)
			assert.Contains(t, string(comments), `"text": "nice"`)
		})
	}
}

func TestFetchDownloadError(t *testing.T) {
	client, store, dir := setup(t)
	client.On("Download", mock.Anything, "https://cdn.example/1.jpg").Return(nil, errors.New("connection reset")).Once()

	post := &instagram.Post{
		Shortcode: "S",
		Typename:  instagram.TypeSidecar,
		DateUTC:   taken,
		Caption:   "caption",
		Children: []instagram.Media{
			{DisplayURL: "https://cdn.example/1.jpg"},
			{DisplayURL: "https://cdn.example/2.jpg"},
		},
	}
	err := New(client, store, Options{SaveCaption: true}, logger.NewNopLogger()).Fetch(context.Background(), post, dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, listFiles(t, dir))
	client.AssertNumberOfCalls(t, "Download", 1)
}

func TestFetchSkipsBlankCaption(t *testing.T) {
	client, store, dir := setup(t)
	client.On("Download", mock.Anything, mock.Anything).Return(body("jpeg"), nil)

	post := &instagram.Post{Shortcode: "P", Typename: instagram.TypeImage, DateUTC: taken, DisplayURL: "u", Caption: "  \n"}
	require.NoError(t, New(client, store, Options{SaveCaption: true}, logger.NewNopLogger()).Fetch(context.Background(), post, dir))

	assert.Equal(t, []string{stem + ".jpg"}, listFiles(t, dir))
}

func TestKindOptions(t *testing.T) {
	base := Options{DownloadComments: true, SaveCaption: true, DownloadVideos: true, DownloadVideoThumbnails: true}

	photo := PhotoOptions(base)
	assert.False(t, photo.DownloadVideos)
	assert.False(t, photo.DownloadVideoThumbnails)
	assert.True(t, photo.DownloadComments)

	video := VideoOptions(Options{})
	assert.True(t, video.DownloadVideos)
	assert.True(t, video.DownloadVideoThumbnails)
	assert.False(t, video.SaveCaption)
}
