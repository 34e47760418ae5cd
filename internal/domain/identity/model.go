package identity

import "time"

// Account is a registered user account. Anonymous use is represented
// by the absence of a current account, not by an Account value.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
}
