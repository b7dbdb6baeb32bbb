package entity

import "time"

// User is a registered creator (Domain 层，不依赖 JSON 序列化)
type User struct {
	ID           string
	Email        string
	DisplayName  *string
	PasswordHash string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}
