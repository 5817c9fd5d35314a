package dto

// CreateCategoryDTO is bound from a JSON body. Slug is generated from
// Name when empty.
type CreateCategoryDTO struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

// UpdateCategoryDTO holds optional fields; nil means leave unchanged.
type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}
