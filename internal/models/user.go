// ABOUTME: User model with language preference and rotation position.
// ABOUTME: Users are created on first interaction and never deleted.
package models

import (
	"time"
)

// Language is a supported interface language code.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
	LanguageRussian    Language = "ru"
	LanguageGerman     Language = "de"
)

// DefaultLanguage is used whenever a user has not picked one.
const DefaultLanguage = LanguageEnglish

// SupportedLanguages lists languages in display order.
var SupportedLanguages = []Language{
	LanguageEnglish,
	LanguageIndonesian,
	LanguageRussian,
	LanguageGerman,
}

// IsSupportedLanguage reports whether code names a supported language.
func IsSupportedLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if string(l) == code {
			return true
		}
	}
	return false
}

// NormalizeLanguage returns code as a Language, or DefaultLanguage if unsupported.
func NormalizeLanguage(code string) Language {
	if IsSupportedLanguage(code) {
		return Language(code)
	}
	return DefaultLanguage
}

// User is a registered chat user.
type User struct {
	ID            int64
	ChatID        *int64
	Username      *string
	FirstName     *string
	RegisteredAt  time.Time
	UpdatedAt     time.Time
	Language      *Language
	RotationIndex int
}

// NewUser creates a User with registration timestamps set to now.
func NewUser(id int64) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// WithChat sets the chat the user talks to the bot from.
func (u *User) WithChat(chatID int64) *User {
	u.ChatID = &chatID
	return u
}

// WithNames sets the display fields, ignoring empty values.
func (u *User) WithNames(username, firstName string) *User {
	if username != "" {
		u.Username = &username
	}
	if firstName != "" {
		u.FirstName = &firstName
	}
	return u
}

// PreferredLanguage returns the user's language or the default.
func (u *User) PreferredLanguage() Language {
	if u == nil || u.Language == nil {
		return DefaultLanguage
	}
	return NormalizeLanguage(string(*u.Language))
}

// DisplayName returns the best available human name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != nil && *u.FirstName != "":
		return *u.FirstName
	case u.Username != nil && *u.Username != "":
		return *u.Username
	default:
		return ""
	}
}
