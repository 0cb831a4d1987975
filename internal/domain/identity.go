package domain

// Identity is the signed-in user as reported by the session provider.
// The zero value is an anonymous visitor.
type Identity struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

func (i Identity) Authenticated() bool {
	return i.UserID != ""
}
