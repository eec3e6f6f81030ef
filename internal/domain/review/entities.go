package review

import (
	"time"

	"creator-marketplace/internal/domain/apperr"

	"gorm.io/datatypes"
)

var (
	ErrNotFound        = apperr.NotFound("review not found")
	ErrDuplicateReview = apperr.Precondition("reviewer has already reviewed this contract")
	ErrInvalidRating   = apperr.Validation("rating must be between 1 and 5")
	ErrNotReviewable   = apperr.Precondition("contract cannot be reviewed in its current state")
)

const (
	MinRating = 1
	MaxRating = 5
)

// Table: reviews
type Review struct {
	ID               uint64                             `gorm:"primaryKey;column:id" json:"-"`
	ReviewID         string                             `gorm:"column:review_id;size:32;uniqueIndex:ux_reviews_review_id" json:"review_id"`
	ContractID       string                             `gorm:"column:contract_id;size:32;not null;uniqueIndex:ux_reviews_contract_reviewer,priority:1" json:"contract_id"`
	ReviewerID       string                             `gorm:"column:reviewer_id;size:32;not null;uniqueIndex:ux_reviews_contract_reviewer,priority:2" json:"reviewer_id"`
	ReviewedID       string                             `gorm:"column:reviewed_id;size:32;not null;index" json:"reviewed_id"`
	Rating           int                                `gorm:"column:rating;not null" json:"rating"`
	Comment          string                             `gorm:"column:comment;type:text" json:"comment"`
	RatingCategories datatypes.JSONType[map[string]int] `gorm:"column:rating_categories" json:"rating_categories"`
	IsPublic         bool                               `gorm:"column:is_public;not null;default:true" json:"is_public"`
	CreatedAt        time.Time                          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func ValidRating(r int) bool { return r >= MinRating && r <= MaxRating }

// ValidateCategories checks every category score against the same 1..5 scale.
func ValidateCategories(cats map[string]int) error {
	for name, score := range cats {
		if name == "" || !ValidRating(score) {
			return ErrInvalidRating
		}
	}
	return nil
}
