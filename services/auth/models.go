package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email       string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Username    string    `json:"username" gorm:"uniqueIndex;size:254;not null"`
	Password    string    `json:"-" gorm:"not null"`
	FirstName   string    `json:"first_name" gorm:"size:150"`
	LastName    string    `json:"last_name" gorm:"size:150"`
	IsActive    bool      `json:"is_active" gorm:"default:false;not null"`
	IsSuperuser bool      `json:"is_superuser" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// VerificationRecord tracks the single current activation or reset token for
// a user. The token field is shared between the two flows; IsVerified tells
// them apart: activation runs while false, reset requires true.
type VerificationRecord struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	User       *User      `json:"-" gorm:"foreignKey:UserID"`
	Token      *string    `json:"-" gorm:"index;size:128"`
	IsVerified bool       `json:"is_verified" gorm:"default:false;not null"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	// UpdatedAt is the expiry anchor: a token is stale once
	// now > UpdatedAt + the configured window. gorm refreshes it on
	// every save, so rewriting the token restarts the clock.
	UpdatedAt time.Time `json:"modified_at"`
}

func (VerificationRecord) TableName() string {
	return "verification_records"
}

func (v *VerificationRecord) IsExpired(window time.Duration) bool {
	return v.expiredAt(time.Now(), window)
}

// expiredAt is strict: the instant UpdatedAt+window itself is still valid.
func (v *VerificationRecord) expiredAt(now time.Time, window time.Duration) bool {
	return now.After(v.UpdatedAt.Add(window))
}
