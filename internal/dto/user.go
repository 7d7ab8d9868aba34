package dto

import (
	"time"

	"github.com/yukikurage/growmap/internal/models"
)

// UserDTO is the public view of a user; the password hash never leaves the server.
type UserDTO struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}
