package posts

// Post represents a stored post record. It has no secret fields, so the
// stored shape doubles as the external projection.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"created_at"`
	CreatedBy string `json:"created_by"`
}

// OwnedPost pairs a post with its author's username for ownership checks.
// A dangling post (author deleted) has an empty OwnerUsername, which no
// authenticated identity can match.
type OwnedPost struct {
	Post
	OwnerUsername string
}
