package models

// LoginResult is returned by a successful authentication.
type LoginResult struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Account      *PublicAccount `json:"account"`
}

// AccessTokenResult is returned by a refresh.
type AccessTokenResult struct {
	AccessToken string `json:"access_token"`
}
