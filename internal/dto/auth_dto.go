package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is also the logout body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest = RefreshRequest

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

// UserResponse is the account as its owner (or an admin) sees it; it is the
// only place the email is exposed.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	AvatarType  string    `json:"avatar_type"`
	AvatarValue string    `json:"avatar_value"`
	Role        string    `json:"role"`
	IsBanned    bool      `json:"is_banned"`
}

type UserStats struct {
	Posts         int `json:"posts"`
	LikesReceived int `json:"likes_received"`
	Comments      int `json:"comments"`
	Followers     int `json:"followers"`
	Following     int `json:"following"`
}

type MeResponse struct {
	User      UserResponse `json:"user"`
	Bio       string       `json:"bio"`
	BanReason *string      `json:"ban_reason,omitempty"`
	Stats     UserStats    `json:"stats"`
}

type UsernameAvailability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
