package recommend

import (
	"fmt"
	"strings"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// BuildPrompt renders the consultant instruction shared by text vendors.
func BuildPrompt(req Request) string {
	req = req.Normalized()

	var b strings.Builder
	fmt.Fprintf(&b, "You are a professional hairstyle consultant. Analyze the face in the provided photo "+
		"and recommend %d suitable hairstyles.\n\n", req.Count)

	b.WriteString("User preferences:\n")
	b.WriteString(formatPreferences(req.Preferences))

	b.WriteString("\nRespond with JSON only, in this format:\n")
	b.WriteString(`{
  "analysis": "Short analysis of the face shape and features",
  "recommendations": [
    {
      "name": "Hairstyle name",
      "description": "Brief description of the hairstyle",
      "reason": "Why this hairstyle suits the user",
      "face_shape_match": "Which face shape it matches best"
    }
  ]
}
`)

	if lang := languageName(req.Locale); lang != "" {
		fmt.Fprintf(&b, "\nWrite every text value in %s.\n", lang)
	}
	return b.String()
}

func formatPreferences(p domain.Preferences) string {
	if p.IsEmpty() {
		return "- No specific preferences\n"
	}

	var b strings.Builder
	for _, field := range []struct{ label, value string }{
		{"Gender", p.Gender},
		{"Style", p.Style},
		{"Occasion", p.Occasion},
		{"Hair color", p.Color},
		{"Length", p.Length},
	} {
		if v := strings.TrimSpace(field.value); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", field.label, v)
		}
	}
	return b.String()
}

func languageName(locale string) string {
	switch {
	case strings.HasPrefix(locale, "zh"):
		return "Traditional Chinese"
	case strings.HasPrefix(locale, "en"):
		return "English"
	default:
		return ""
	}
}
