package models

import "time"

type Role struct {
	ID   uint   `gorm:"primaryKey"           json:"id"`
	Name string `gorm:"size:255"             json:"name"`
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Username     string    `gorm:"size:255;uniqueIndex;not null"    json:"username"`
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"`
	FullName     string    `gorm:"column:fullname;size:255"         json:"fullname"`
	Email        string    `gorm:"size:255"                         json:"email"`
	PhoneNumber  string    `gorm:"size:20"                          json:"phone_number"`
	Disabled     bool      `gorm:"not null;default:false"           json:"disabled"`
	RoleID       uint      `gorm:"not null;index"                   json:"role_id"`
	Role         Role      `gorm:"foreignKey:RoleID"                json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RevokedToken holds the literal encoded token string. The unique index is
// what makes concurrent revocation of the same token collapse into one row.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"                          json:"id"`
	Token     string    `gorm:"type:text;uniqueIndex;not null"      json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type Province struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                  json:"id"`
	Name      string    `gorm:"column:province;size:255;uniqueIndex;not null" json:"province"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (Province) TableName() string { return "province" }

func All() []any {
	return []any{&Role{}, &User{}, &RevokedToken{}, &Province{}}
}
