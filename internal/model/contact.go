package model

import "time"

// DemoRequest is a public intake form submission. Intake must succeed
// even when the acknowledgment mail cannot be delivered.
type DemoRequest struct {
	BaseModel
	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:191;not null" json:"email"`
	Company string `gorm:"size:255" json:"company"`
	Phone   string `gorm:"size:50" json:"phone"`
	Message string `gorm:"type:text" json:"message"`
}

func (DemoRequest) TableName() string {
	return "demo_requests"
}

// PasswordResetToken is a single-use token mailed to a user.
type PasswordResetToken struct {
	BaseModel
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Token     string    `gorm:"size:36;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Used      bool      `gorm:"default:false" json:"used"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
