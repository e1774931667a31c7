package owner

import "time"

// Owner is a merchant account using the payment backend. The callback URL
// receives movement notifications; the secret authenticates API access.
type Owner struct {
	ID          string
	Name        string
	Email       string
	CallbackURL string
	SecretHash  string
	Admin       bool
	CreatedAt   time.Time
}
