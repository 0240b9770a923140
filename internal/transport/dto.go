package transport

import (
	"time"

	"github.com/havirkesht/backend/internal/models"
)

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password"`
	NewPassword string `json:"new_password" form:"new_password"`
}

type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RoleID      uint   `json:"role_id"`
	Disabled    bool   `json:"disabled"`
}

type UpdateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	RoleID      uint   `json:"role_id"`
	Disabled    bool   `json:"disabled"`
}

type UserOut struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullname"`
	PhoneNumber string    `json:"phone_number"`
	RoleID      uint      `json:"role_id"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewUserOut(u *models.User) UserOut {
	return UserOut{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		RoleID:      u.RoleID,
		Disabled:    u.Disabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type ProvinceIn struct {
	Province string `json:"province"`
}

type ProvinceCreatedOut struct {
	Province string `json:"province"`
}

type ProvinceOut struct {
	ID        uint      `json:"id"`
	Province  string    `json:"province"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageOut struct {
	Message string `json:"message"`
}

type ListOut[T any] struct {
	Total int64 `json:"total"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
	Items []T   `json:"items"`
}
