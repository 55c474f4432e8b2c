// models/visa.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visa is a listing for a single country. CoverImage is the public URL path,
// ImagePath the filesystem location used for cleanup on update/delete.
type Visa struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Country     string             `json:"country" bson:"country"`
	Duration    string             `json:"duration" bson:"duration"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	CoverImage  string             `json:"coverImage" bson:"coverImage"`
	ImagePath   string             `json:"imagePath,omitempty" bson:"imagePath"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// VisaRequest carries the multipart form fields of POST/PUT /api/visas.
// The cover image arrives as a file part, not a form value.
type VisaRequest struct {
	Country     string  `form:"country" validate:"required"`
	Duration    string  `form:"duration" validate:"required"`
	Price       float64 `form:"price" validate:"min=0"`
	Description string  `form:"description" validate:"required"`
}
