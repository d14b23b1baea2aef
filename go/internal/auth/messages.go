package auth

import (
	"time"

	"github.com/mcdev12/sushirush/go/internal/models"
)

type SignUpRequestMsg struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type SignInRequestMsg struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserMsg   `json:"user"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type GetMeRequest struct{}

type GetMeResponse struct {
	User UserMsg `json:"user"`
}

type UpdateSettingsRequestMsg struct {
	DisplayName   *string `json:"displayName,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
	SoundEnabled  *bool   `json:"soundEnabled,omitempty"`
}

type UpdateSettingsResponse struct {
	User UserMsg `json:"user"`
}

type UserMsg struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	Role          string    `json:"role"`
	IsAdmin       bool      `json:"isAdmin"`
	Notifications bool      `json:"notifications"`
	SoundEnabled  bool      `json:"soundEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
}

func userToMsg(user *models.User, isAdmin bool) UserMsg {
	msg := UserMsg{
		ID:            user.ID.String(),
		Email:         user.Email,
		DisplayName:   user.DisplayName,
		Role:          string(user.Role),
		IsAdmin:       isAdmin,
		Notifications: true,
		SoundEnabled:  true,
		CreatedAt:     user.CreatedAt,
	}
	if user.PhotoURL != nil {
		msg.PhotoURL = *user.PhotoURL
	}
	if user.Settings != nil {
		msg.Notifications = user.Settings.Notifications
		msg.SoundEnabled = user.Settings.SoundEnabled
	}
	return msg
}
