// Package profile defines the persisted user profile and its fields.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Field names a persisted profile entry.
type Field string

const (
	// FieldUsername is the display name entry.
	FieldUsername Field = "username"
	// FieldProfileImage is the custom picture location entry.
	FieldProfileImage Field = "profile_image_uri_or_path"
)

const (
	// DefaultUsername is shown until the user picks another name.
	DefaultUsername = "Lexi"
	// DefaultProfileImage means "no custom image".
	DefaultProfileImage = ""
)

var (
	// ErrUnknownField is returned for a field name that is not persisted.
	ErrUnknownField = errors.New("unknown profile field")
	// ErrEmptyUsername is returned when clearing the username.
	ErrEmptyUsername = errors.New("username must not be empty")
)

// UserProfile is the user-editable part of the application state.
type UserProfile struct {
	Username             string
	ProfileImageLocation string
}

// Default returns the profile used before anything was saved.
func Default() UserProfile {
	return UserProfile{
		Username:             DefaultUsername,
		ProfileImageLocation: DefaultProfileImage,
	}
}

// HasCustomImage reports whether a profile picture was chosen.
func (p UserProfile) HasCustomImage() bool {
	return p.ProfileImageLocation != ""
}

// Get returns the value stored under field.
func (p UserProfile) Get(field Field) (string, error) {
	switch field {
	case FieldUsername:
		return p.Username, nil
	case FieldProfileImage:
		return p.ProfileImageLocation, nil
	default:
		return "", fmt.Errorf("%q: %w", field, ErrUnknownField)
	}
}

// With returns a copy of p with field set to value.
func (p UserProfile) With(field Field, value string) (UserProfile, error) {
	switch field {
	case FieldUsername:
		value = strings.TrimSpace(value)
		if value == "" {
			return p, ErrEmptyUsername
		}

		p.Username = value
	case FieldProfileImage:
		p.ProfileImageLocation = strings.TrimSpace(value)
	default:
		return p, fmt.Errorf("%q: %w", field, ErrUnknownField)
	}

	return p, nil
}

// ParseField validates a field name received from a client.
func ParseField(name string) (Field, error) {
	switch f := Field(strings.TrimSpace(name)); f {
	case FieldUsername, FieldProfileImage:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownField)
	}
}
