package instagram

import (
	"time"

	"github.com/samber/lo"
)

// Typename values reported for timeline media
const (
	TypeImage   = "GraphImage"
	TypeVideo   = "GraphVideo"
	TypeSidecar = "GraphSidecar"
)

// InstagramResponse represents the top-level response from Instagram API
type InstagramResponse struct {
	RequiresToLogin bool   `json:"requires_to_login"`
	Data            Data   `json:"data"`
	Status          string `json:"status"`
}

// Data wraps the user information in the response
type Data struct {
	User *User `json:"user"`
}

// User represents an Instagram user profile
type User struct {
	ID                       string                   `json:"id"`
	Username                 string                   `json:"username"`
	FullName                 string                   `json:"full_name"`
	Biography                string                   `json:"biography"`
	IsPrivate                bool                     `json:"is_private"`
	EdgeOwnerToTimelineMedia EdgeOwnerToTimelineMedia `json:"edge_owner_to_timeline_media"`
}

// EdgeOwnerToTimelineMedia contains the user's media information
type EdgeOwnerToTimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

// Node represents a single media item (photo, video or sidecar)
type Node struct {
	ID                    string        `json:"id"`
	Typename              string        `json:"__typename"`
	Shortcode             string        `json:"shortcode"`
	DisplayURL            string        `json:"display_url"`
	VideoURL              string        `json:"video_url"`
	IsVideo               bool          `json:"is_video"`
	TakenAtTimestamp      int64         `json:"taken_at_timestamp"`
	Dimensions            Dimensions    `json:"dimensions"`
	Owner                 Owner         `json:"owner"`
	EdgeMediaToCaption    captionEdges  `json:"edge_media_to_caption"`
	EdgeMediaToComment    commentEdges  `json:"edge_media_to_comment"`
	EdgeMediaPreviewLike  countEdge     `json:"edge_media_preview_like"`
	EdgeSidecarToChildren *sidecarEdges `json:"edge_sidecar_to_children,omitempty"`
}

// Dimensions is the pixel size of a media item
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Owner identifies the account that published a post
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type countEdge struct {
	Count int `json:"count"`
}

type captionEdges struct {
	Edges []captionEdge `json:"edges"`
}

type captionEdge struct {
	Node struct {
		Text string `json:"text"`
	} `json:"node"`
}

type commentEdges struct {
	Count int           `json:"count"`
	Edges []commentEdge `json:"edges"`
}

type commentEdge struct {
	Node commentNode `json:"node"`
}

type commentNode struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
	Owner     Owner  `json:"owner"`
}

type sidecarEdges struct {
	Edges []Edge `json:"edges"`
}

// Profile is a resolved account
type Profile struct {
	ID        string
	Username  string
	FullName  string
	Biography string
	IsPrivate bool
	PostCount int

	timeline EdgeOwnerToTimelineMedia
}

// Post is the read-only descriptor of one feed item
type Post struct {
	ID           string    `json:"id"`
	Shortcode    string    `json:"shortcode"`
	Typename     string    `json:"typename"`
	DateUTC      time.Time `json:"date_utc"`
	IsVideo      bool      `json:"is_video"`
	DisplayURL   string    `json:"display_url"`
	VideoURL     string    `json:"video_url,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Likes        int       `json:"likes"`
	CommentCount int       `json:"comment_count"`
	Comments     []Comment `json:"-"`
	Children     []Media   `json:"children,omitempty"`
	Owner        Owner     `json:"owner"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

// Media is one item of a sidecar post
type Media struct {
	DisplayURL string `json:"display_url"`
	VideoURL   string `json:"video_url,omitempty"`
	IsVideo    bool   `json:"is_video"`
}

// Comment is a comment embedded in the feed response
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Owner     Owner     `json:"owner"`
}

// IsSidecar reports whether the post carries several media items
func (p *Post) IsSidecar() bool {
	return p.Typename == TypeSidecar
}

// URL returns the public permalink of the post
func (p *Post) URL() string {
	return GetPostURL(p.Shortcode)
}

func newProfile(u *User) *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Biography: u.Biography,
		IsPrivate: u.IsPrivate,
		PostCount: u.EdgeOwnerToTimelineMedia.Count,
		timeline:  u.EdgeOwnerToTimelineMedia,
	}
}

func newPost(n Node) *Post {
	post := &Post{
		ID:           n.ID,
		Shortcode:    n.Shortcode,
		Typename:     n.Typename,
		DateUTC:      time.Unix(n.TakenAtTimestamp, 0).UTC(),
		IsVideo:      n.IsVideo,
		DisplayURL:   n.DisplayURL,
		VideoURL:     n.VideoURL,
		Likes:        n.EdgeMediaPreviewLike.Count,
		CommentCount: n.EdgeMediaToComment.Count,
		Owner:        n.Owner,
		Width:        n.Dimensions.Width,
		Height:       n.Dimensions.Height,
	}

	if len(n.EdgeMediaToCaption.Edges) > 0 {
		post.Caption = n.EdgeMediaToCaption.Edges[0].Node.Text
	}

	post.Comments = lo.Map(n.EdgeMediaToComment.Edges, func(e commentEdge, _ int) Comment {
		return Comment{
			ID:        e.Node.ID,
			Text:      e.Node.Text,
			CreatedAt: time.Unix(e.Node.CreatedAt, 0).UTC(),
			Owner:     e.Node.Owner,
		}
	})

	if n.EdgeSidecarToChildren != nil {
		post.Children = lo.Map(n.EdgeSidecarToChildren.Edges, func(e Edge, _ int) Media {
			return Media{DisplayURL: e.Node.DisplayURL, VideoURL: e.Node.VideoURL, IsVideo: e.Node.IsVideo}
		})
	}

	return post
}
