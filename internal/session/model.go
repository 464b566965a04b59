package session

import "time"

// Session is the authenticated state of the console. It is either entirely
// absent (logged out) or fully populated; no field is meaningful on its own.
// JSON tags use the auth API's wire names so the persisted value matches what
// the server returned, timestamps included (ISO-8601).
type Session struct {
	AccessToken            string    `json:"access_token"`
	AccessTokenExpiration  time.Time `json:"access_token_expiration"`
	RefreshToken           string    `json:"refresh_token"`
	RefreshTokenExpiration time.Time `json:"refresh_token_expiration"`
	Email                  string    `json:"email"`
	FirstName              string    `json:"first_name"`
	LastName               string    `json:"last_name"`
}

// UserInfo is the identity view exposed to the rest of the application.
type UserInfo struct {
	Email     string
	FirstName string
	LastName  string
	Name      string
}
