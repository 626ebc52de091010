package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/ulikunitz/xz"

	"igposts/pkg/instagram"
)

const (
	// Extension is the suffix of plain metadata files
	Extension = ".json"

	// CompressedExtension is the suffix of xz-compressed metadata files
	CompressedExtension = ".json.xz"
)

// PostMetadata represents all metadata saved next to a post's media
type PostMetadata struct {
	// Core identifiers
	ID        string `json:"id"`
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	Typename  string `json:"typename"`

	// Media properties
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	IsVideo    bool   `json:"is_video"`
	DisplayURL string `json:"display_url"`
	VideoURL   string `json:"video_url,omitempty"`

	// Timestamps
	TakenAt      time.Time `json:"taken_at"`
	DownloadedAt time.Time `json:"downloaded_at"`

	Caption string `json:"caption,omitempty"`

	// Engagement
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`

	Owner    instagram.Owner   `json:"owner"`
	Children []instagram.Media `json:"children,omitempty"`
}

// CommentRecord is one entry of a _comments.json file
type CommentRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	Owner     string    `json:"owner"`
}

// FromPost builds the metadata record for post
func FromPost(post *instagram.Post, downloadedAt time.Time) *PostMetadata {
	return &PostMetadata{
		ID:            post.ID,
		Shortcode:     post.Shortcode,
		URL:           post.URL(),
		Typename:      post.Typename,
		Width:         post.Width,
		Height:        post.Height,
		IsVideo:       post.IsVideo,
		DisplayURL:    post.DisplayURL,
		VideoURL:      post.VideoURL,
		TakenAt:       post.DateUTC,
		DownloadedAt:  downloadedAt.UTC(),
		Caption:       post.Caption,
		LikesCount:    post.Likes,
		CommentsCount: post.CommentCount,
		Owner:         post.Owner,
		Children:      post.Children,
	}
}

// Comments converts the comments embedded in post
func Comments(post *instagram.Post) []CommentRecord {
	return lo.Map(post.Comments, func(c instagram.Comment, _ int) CommentRecord {
		return CommentRecord{ID: c.ID, CreatedAt: c.CreatedAt, Text: c.Text, Owner: c.Owner.Username}
	})
}

// FileName returns the metadata file name for a post directory stem
func FileName(stem string, compress bool) string {
	if compress {
		return stem + CompressedExtension
	}
	return stem + Extension
}

// Encode renders v as indented JSON, xz-compressed when compress is set
func Encode(v interface{}, compress bool) (*bytes.Buffer, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var buf bytes.Buffer
	if !compress {
		buf.Write(data)
		return &buf, nil
	}

	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress metadata: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish xz stream: %w", err)
	}

	return &buf, nil
}

// Load reads a metadata file written by Encode, compressed or not
func Load(path string) (*PostMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open xz stream: %w", err)
		}
		r = xr
	}

	var meta PostMetadata
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}
