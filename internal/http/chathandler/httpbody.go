package chathandler

import (
	"time"

	"chatrelaygo/internal/services/user"
)

type RegisterBody struct {
	Username string `json:"username" binding:"required,min=3" example:"alice"`
	Email    string `json:"email"    binding:"required,email" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"s3cret!"`
} // @name RegisterRequest

type LoginBody struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
} // @name LoginRequest

type LoginResponse struct {
	Token    string        `json:"token"`
	Username string        `json:"username"`
	Profile  *user.UserDTO `json:"profile"`
} // @name LoginResponse

type UpdateProfileBody struct {
	Bio             string `json:"bio"              binding:"max=500"`
	ThemePreference string `json:"theme_preference" binding:"omitempty,oneof=light dark" example:"dark"`
} // @name UpdateProfileRequest

type CreateRoomBody struct {
	Name      string `json:"name"       binding:"required" example:"lobby"`
	IsPrivate bool   `json:"is_private"`
} // @name CreateRoomRequest

type ListRoomsQuery struct {
	Limit  int `form:"limit,default=50"  binding:"gte=0,lte=100"`
	Offset int `form:"offset,default=0"  binding:"gte=0"`
} // @name ListRoomsQuery

type PresenceResponse struct {
	Username string    `json:"username"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen" example:"2025-07-27T16:05:05Z"`
} // @name PresenceResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
