package dto

type CreateReviewDTO struct {
	Name               string `json:"name" binding:"required"`
	Rating             int    `json:"rating" binding:"required,min=1,max=5"`
	Title              string `json:"title" binding:"required"`
	Comment            string `json:"comment" binding:"required"`
	Longevity          string `json:"longevity"`
	Sillage            string `json:"sillage"`
	Occasion           string `json:"occasion"`
	IsVerifiedPurchase bool   `json:"isVerifiedPurchase"`
}
