package auth

import (
	"net/http"

	"golang.org/x/text/secure/precis"
)

// Credentials is the username/password pair claimed by a request. There is
// no session or token: every credentialed call carries the pair in its
// query string and is re-verified against the stored hash.
type Credentials struct {
	Username string
	Password string
}

// CredentialsFromRequest extracts the claimed credentials from the
// `username` and `password` query parameters.
func CredentialsFromRequest(r *http.Request) Credentials {
	q := r.URL.Query()
	return Credentials{
		Username: q.Get("username"),
		Password: q.Get("password"),
	}
}

// NormalizeUsername canonicalizes a username with the PRECIS
// UsernameCaseMapped profile so storage and lookup agree on one form.
func NormalizeUsername(username string) (string, error) {
	return precis.UsernameCaseMapped.String(username)
}
