package entity

// Identity is what the identity provider vouches for on each request.
type Identity struct {
	UID         string
	DisplayName string
	Admin       bool
}
