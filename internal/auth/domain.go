package auth

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	Access      string
	Refresh     string
	IsSuperuser bool
}
