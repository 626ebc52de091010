package instagram

import "context"

// Feed iterates over a profile's posts. Pages are requested only once the
// previous page has been consumed, so a caller that stops early never
// triggers further requests.
type Feed struct {
	client  *Client
	userID  string
	page    []Edge
	idx     int
	cursor  string
	hasNext bool
	current *Post
	err     error
}

// Next advances to the next post. It returns false once the feed is
// exhausted or a page request failed; Err distinguishes the two.
func (f *Feed) Next(ctx context.Context) bool {
	if f.err != nil {
		return false
	}

	for f.idx >= len(f.page) {
		if !f.hasNext || f.cursor == "" {
			f.current = nil
			return false
		}

		media, err := f.client.FetchUserMedia(ctx, f.userID, f.cursor)
		if err != nil {
			f.err = err
			f.current = nil
			return false
		}

		f.page = media.Edges
		f.idx = 0
		f.hasNext = media.PageInfo.HasNextPage && media.PageInfo.EndCursor != f.cursor
		f.cursor = media.PageInfo.EndCursor

		if len(f.page) == 0 {
			f.hasNext = false
		}
	}

	f.current = newPost(f.page[f.idx].Node)
	f.idx++
	return true
}

// Post returns the post Next advanced to
func (f *Feed) Post() *Post {
	return f.current
}

// Err returns the error that stopped the feed, if any
func (f *Feed) Err() error {
	return f.err
}
