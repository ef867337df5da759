package doctor

import (
	"regexp"
	"time"
)

// emailPattern mirrors the registration contract: a plain address shape,
// not full RFC 5322.
var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 50
	PasswordMinLen = 6
)

// Doctor is an authenticated account that owns patient records.
// Deleting a doctor cascades to their patients and, transitively, predictions.
type Doctor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Username     string `gorm:"column:username;type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// ValidEmail reports whether the address matches the registration pattern.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type RegisterCommand struct {
	Username string
	Email    string
	Password string
}
