// Package instagram reads public account data from Instagram's web endpoints.
//
// Resolve turns a username into a Profile, Posts walks that profile's
// timeline newest first, and Download streams a media URL:
//
//	client := instagram.NewClient(30*time.Second, log)
//	profile, err := client.Resolve(ctx, "username")
//	if errors.Is(err, igerrors.ErrProfileNotExists) {
//	    // no such account
//	}
//
//	feed := client.Posts(profile)
//	for feed.Next(ctx) {
//	    post := feed.Post()
//	    body, err := client.Download(ctx, post.DisplayURL)
//	    // ...
//	}
//	if err := feed.Err(); err != nil {
//	    // a later page could not be fetched
//	}
package instagram
