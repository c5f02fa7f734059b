package services

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
)

var (
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrWeakPassword    = errors.New("password must be at least 6 characters")
	ErrInvalidUsername = errors.New("username must be 4-20 characters: letters, numbers and underscore")
	ErrInvalidAvatar   = errors.New("avatar must be a single emoji")
	ErrBioTooLong      = errors.New("bio must be at most 160 characters")
)

const (
	MinPasswordLength = 6
	MaxBioLength      = 160
	maxAvatarRunes    = 8
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{4,20}$`)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// NormalizeAvatar falls back to the ghost when no avatar was picked.
func NormalizeAvatar(avatar string) (string, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return models.DefaultAvatar, nil
	}
	if utf8.RuneCountInString(avatar) > maxAvatarRunes {
		return "", ErrInvalidAvatar
	}
	return avatar, nil
}

func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return ErrBioTooLong
	}
	return nil
}
