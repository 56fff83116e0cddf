// internal/domain/models/account.go
package models

// Account is a staff or sales user managed by the backend.
//
// UserLevel is the numeric privilege rank; smaller is more privileged.
// The backend transports it as text on reads and as an int on writes.
type Account struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Status    string `json:"status"` // active | inactive
	Referrer  string `json:"referrer"`
	UserLevel Text   `json:"userLevel"`
	CreatedAt Text   `json:"createdAt"`
}

// RecordID returns the stable id used for selection membership.
func (a Account) RecordID() string { return a.ID }

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
