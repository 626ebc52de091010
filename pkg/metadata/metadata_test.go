package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igposts/pkg/instagram"
)

func samplePost() *instagram.Post {
	return &instagram.Post{
		ID:           "3300",
		Shortcode:    "Cabc123",
		Typename:     instagram.TypeVideo,
		DateUTC:      time.Date(2024, 3, 9, 17, 4, 5, 0, time.UTC),
		IsVideo:      true,
		DisplayURL:   "https://cdn.example/thumb.jpg",
		VideoURL:     "https://cdn.example/clip.mp4",
		Caption:      "first ride",
		Likes:        12,
		CommentCount: 2,
		Comments: []instagram.Comment{
			{ID: "1", Text: "wow", CreatedAt: time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC), Owner: instagram.Owner{Username: "a"}},
			{ID: "2", Text: "nice", CreatedAt: time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC), Owner: instagram.Owner{Username: "b"}},
		},
		Owner: instagram.Owner{ID: "42", Username: "ar.guto"},
	}
}

func TestFromPost(t *testing.T) {
	downloaded := time.Date(2024, 4, 1, 8, 0, 0, 0, time.FixedZone("BRT", -3*60*60))
	meta := FromPost(samplePost(), downloaded)

	assert.Equal(t, "Cabc123", meta.Shortcode)
	assert.Equal(t, "https://www.instagram.com/p/Cabc123/", meta.URL)
	assert.Equal(t, "https://cdn.example/clip.mp4", meta.VideoURL)
	assert.Equal(t, 12, meta.LikesCount)
	assert.Equal(t, time.UTC, meta.DownloadedAt.Location())
	assert.Equal(t, "ar.guto", meta.Owner.Username)
}

func TestComments(t *testing.T) {
	records := Comments(samplePost())

	require.Len(t, records, 2)
	assert.Equal(t, CommentRecord{ID: "1", Text: "wow", CreatedAt: time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC), Owner: "a"}, records[0])
	assert.Empty(t, Comments(&instagram.Post{}))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "2024-03-09_17-04-05_UTC.json", FileName("2024-03-09_17-04-05_UTC", false))
	assert.Equal(t, "2024-03-09_17-04-05_UTC.json.xz", FileName("2024-03-09_17-04-05_UTC", true))
}

func TestEncodeAndLoad(t *testing.T) {
	meta := FromPost(samplePost(), time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC))

	for _, compress := range []bool{false, true} {
		name := FileName("post", compress)
		t.Run(name, func(t *testing.T) {
			buf, err := Encode(meta, compress)
			require.NoError(t, err)

			if compress {
				assert.Equal(t, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}, buf.Bytes()[:6])
			} else {
				assert.Contains(t, buf.String(), `"shortcode": "Cabc123"`)
			}

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, meta, loaded)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json.xz")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}
