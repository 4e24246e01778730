package recommend

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// jsonObject finds the outermost object in text that wraps JSON in prose or
// a markdown fence.
var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

type vendorHairstyle struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Reason         string `json:"reason"`
	FaceShapeMatch string `json:"face_shape_match"`
	// Some models answer in camel case.
	FaceShapeMatchCamel string `json:"faceShapeMatch"`
}

type vendorResponse struct {
	Analysis        string            `json:"analysis"`
	Recommendations []vendorHairstyle `json:"recommendations"`
}

// ParseResponse decodes a vendor answer into a Result holding at most
// count hairstyles with identifiers ai-1..ai-n. Entries without a name are
// dropped.
func ParseResponse(text string, count int) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidResponse)
	}

	var resp vendorResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		match := jsonObject.FindString(text)
		if match == "" {
			return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
		}
		if err := json.Unmarshal([]byte(match), &resp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
	}

	if count <= 0 || count > MaxCount {
		count = MaxCount
	}

	hairstyles := make([]domain.Hairstyle, 0, count)
	for _, v := range resp.Recommendations {
		if len(hairstyles) == count {
			break
		}
		name := strings.TrimSpace(v.Name)
		if name == "" {
			continue
		}
		match := v.FaceShapeMatch
		if match == "" {
			match = v.FaceShapeMatchCamel
		}
		hairstyles = append(hairstyles, domain.Hairstyle{
			ID:             fmt.Sprintf("ai-%d", len(hairstyles)+1),
			Name:           name,
			Description:    strings.TrimSpace(v.Description),
			Reason:         strings.TrimSpace(v.Reason),
			FaceShapeMatch: strings.TrimSpace(match),
		})
	}

	if len(hairstyles) == 0 {
		return nil, ErrNoRecommendations
	}

	return &Result{
		Recommendations: hairstyles,
		Analysis:        strings.TrimSpace(resp.Analysis),
	}, nil
}
