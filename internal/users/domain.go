package users

// User represents a stored user record. The hashed password never leaves
// the service layer; external responses use Profile.
type User struct {
	ID             string
	Username       string
	HashedPassword string
	Enabled        bool
}

// Profile is the outward projection of a User, omitting the password hash.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Enabled  bool   `json:"enabled"`
}

// Profile projects the record to its public shape.
func (u User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Enabled: u.Enabled}
}
