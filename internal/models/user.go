package models

// User represents the users table
// DB: users
type User struct {
	BaseModel

	FirebaseUID *string `gorm:"column:firebase_uid;size:128;uniqueIndex:users_firebase_uid_key" json:"firebaseUid,omitempty"`
	Name        string  `gorm:"column:name;size:100;not null" json:"name"`
	Email       string  `gorm:"column:email;size:255;not null;uniqueIndex:users_email_key" json:"email"`
	Role        string  `gorm:"column:role;size:20;not null;default:user" json:"role"`
}

func (User) TableName() string {
	return "users"
}
