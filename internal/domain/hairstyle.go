package domain

import "strings"

// Hairstyle describes one recommended hairstyle.
type Hairstyle struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Reason         string `json:"reason"`
	Image          string `json:"image,omitempty"`
	FaceShapeMatch string `json:"face_shape_match,omitempty"`
}

// Preferences are the optional styling hints supplied by the user.
type Preferences struct {
	Gender   string `json:"gender"   validate:"max=64"`
	Style    string `json:"style"    validate:"max=64"`
	Occasion string `json:"occasion" validate:"max=64"`
	Color    string `json:"color"    validate:"max=64"`
	Length   string `json:"length"   validate:"max=64"`
}

// IsEmpty reports whether no preference was given.
func (p Preferences) IsEmpty() bool {
	return strings.TrimSpace(p.Gender+p.Style+p.Occasion+p.Color+p.Length) == ""
}
