package domain

// mockHairstyles is the static catalog served when no recommendation vendor
// is available. Identifiers are stable and referenced by generation requests.
var mockHairstyles = []Hairstyle{
	{
		ID:             "1",
		Name:           "French Waves",
		Description:    "Elegant French-style waves for round and oval faces",
		Reason:         "Softens facial lines and adds a gentle touch",
		Image:          "https://images.unsplash.com/photo-1562322140-8baeececf3df?w=400&h=500&fit=crop",
		FaceShapeMatch: "round, oval",
	},
	{
		ID:             "2",
		Name:           "Korean Short Cut",
		Description:    "A crisp Korean-style short cut for square and diamond faces",
		Reason:         "Brings out facial features with a fashionable look",
		Image:          "https://images.unsplash.com/photo-1595624794900-abd1d09c7083?w=400&h=500&fit=crop",
		FaceShapeMatch: "square, diamond",
	},
	{
		ID:             "3",
		Name:           "Air Bangs Long Hair",
		Description:    "Light air bangs paired with long hair, suits any face shape",
		Reason:         "A youthful look that highlights freshness",
		Image:          "https://images.unsplash.com/photo-1522139137660-38fb1c5a3d3a?w=400&h=500&fit=crop",
		FaceShapeMatch: "any",
	},
	{
		ID:             "4",
		Name:           "Top Bun",
		Description:    "A playful bun for round and long faces",
		Reason:         "Lengthens facial proportions, cute and neat",
		Image:          "https://images.unsplash.com/photo-1616683693504-3ea7e9ad6fec?w=400&h=500&fit=crop",
		FaceShapeMatch: "round, long",
	},
	{
		ID:             "5",
		Name:           "Natural Middle Part",
		Description:    "Naturally parted long hair with a mature charm",
		Reason:         "Suits professional settings with a graceful feel",
		Image:          "https://images.unsplash.com/photo-1492106087820-71f1a00d2b11?w=400&h=500&fit=crop",
		FaceShapeMatch: "oval, heart",
	},
	{
		ID:             "6",
		Name:           "Fashion Highlights",
		Description:    "Bold fashion highlights for those who want to stand out",
		Reason:         "On trend and expresses a unique personal style",
		Image:          "https://images.unsplash.com/photo-1605497788044-5a32c7078486?w=400&h=500&fit=crop",
		FaceShapeMatch: "any",
	},
}

// CatalogSize is the number of hairstyles in the static catalog.
var CatalogSize = len(mockHairstyles)

// MockHairstyles returns a copy of the first n catalog entries. n is clamped
// to the catalog size.
func MockHairstyles(n int) []Hairstyle {
	if n < 0 {
		n = 0
	}
	if n > len(mockHairstyles) {
		n = len(mockHairstyles)
	}
	out := make([]Hairstyle, n)
	copy(out, mockHairstyles[:n])
	return out
}

// FindHairstyle looks up a catalog entry by identifier.
func FindHairstyle(id string) (Hairstyle, error) {
	for _, h := range mockHairstyles {
		if h.ID == id {
			return h, nil
		}
	}
	return Hairstyle{}, ErrHairstyleNotFound
}
