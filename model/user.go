package model

import "time"

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`

	// bcrypt哈希，不返回给前端
	PasswordHash string `gorm:"not null" json:"-"`

	Avatar string `json:"avatar"`
}

func (User) TableName() string {
	return "users"
}
