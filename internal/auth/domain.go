package auth

// Account is the credential-bearing view of a user record.
type Account struct {
	ID             string
	Username       string
	HashedPassword string
	Enabled        bool
}
