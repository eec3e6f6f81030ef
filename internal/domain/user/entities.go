package user

import (
	"time"

	"creator-marketplace/internal/domain/apperr"

	"github.com/shopspring/decimal"
)

var ErrNotFound = apperr.NotFound("user not found")

type Role string

const (
	RoleBrand   Role = "brand"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// Table: users. Rows are provisioned by the identity service; this module
// only reads the role and maintains the rating aggregate.
type User struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	UserID        string          `gorm:"column:user_id;size:32;uniqueIndex:ux_users_user_id" json:"user_id"`
	Role          Role            `gorm:"column:role;size:16;not null;index" json:"role"`
	Name          string          `gorm:"column:name;size:255" json:"name"`
	AverageRating decimal.Decimal `gorm:"column:average_rating;type:decimal(3,2);not null;default:0" json:"average_rating"`
	TotalReviews  int             `gorm:"column:total_reviews;not null;default:0" json:"total_reviews"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
