// internal/domain/models/lead.go
package models

// Lead is a customer contact record ("user DB" in the backend schema).
// PhoneNumber is the backend's dedup key.
type Lead struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	PhoneNumber string `json:"phonenumber"`
	Sex         string `json:"sex"`
	IncomePath  string `json:"incomepath"`
	CreatorName string `json:"creatorname"`
	Memo        string `json:"memo"`
	SMS         string `json:"sms"`
	Type        string `json:"type"`
	Manager     string `json:"manager"`
	IncomeDate  string `json:"incomedate"` // yyyy-mm-dd
	CreatedAt   Text   `json:"createdAt"`
	UpdatedAt   Text   `json:"updatedAt"`
}

// RecordID returns the stable id used for selection membership.
func (l Lead) RecordID() string { return l.ID }
