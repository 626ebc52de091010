package auth

import (
	"fmt"
	"io"
)

// WriteCookieGuide prints how to copy the session cookies out of a browser
func WriteCookieGuide(w io.Writer) {
	fmt.Fprintln(w, "Some profiles are only visible to logged-in users. igposts can reuse")
	fmt.Fprintln(w, "the session of a browser where you are logged in to Instagram:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Open https://www.instagram.com and log in")
	fmt.Fprintln(w, "  2. Open the developer tools (F12) and go to Application > Cookies")
	fmt.Fprintln(w, "     (Storage > Cookies in Firefox)")
	fmt.Fprintln(w, "  3. Copy the values of the 'sessionid' and 'csrftoken' cookies")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The session gives full access to the account. It is stored in the system")
	fmt.Fprintln(w, "keychain or an encrypted file and is never written to the config file.")
}
