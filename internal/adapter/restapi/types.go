package restapi

// Raw records as returned by the backend. Field names and value types
// vary between backend versions, so loosely typed members are decoded
// into any and resolved by the normalizer.
type (
	RawItem struct {
		ID           any    `json:"id"`
		Name         string `json:"name"`
		CategoryID   any    `json:"category_id,omitempty"`
		Category     any    `json:"category,omitempty"`
		Price        any    `json:"price,omitempty"`
		Discount     any    `json:"discount,omitempty"`
		Description  string `json:"description"`
		ImagePath    any    `json:"image_path,omitempty"`
		ImageURL     any    `json:"image_url,omitempty"`
		Image        any    `json:"image,omitempty"`
		Status       string `json:"status,omitempty"`
		Available    any    `json:"available,omitempty"`
		CreatedAt    string `json:"created_at,omitempty"`
		CreatedAtAlt string `json:"createdAt,omitempty"`
	}

	RawCategory struct {
		ID           any    `json:"id"`
		Name         string `json:"name,omitempty"`
		Label        string `json:"label,omitempty"`
		ImagePath    any    `json:"image_path,omitempty"`
		ImageURL     any    `json:"image_url,omitempty"`
		Image        any    `json:"image,omitempty"`
		CreatedAt    string `json:"created_at,omitempty"`
		CreatedAtAlt string `json:"createdAt,omitempty"`
		UpdatedAt    string `json:"updated_at,omitempty"`
		UpdatedAtAlt string `json:"updatedAt,omitempty"`
	}
)

const (
	statusAvailable   = "available"
	statusUnavailable = "unavailable"
)
