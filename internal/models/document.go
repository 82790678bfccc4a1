package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentCategory classifies an uploaded supporting document.
type DocumentCategory string

const (
	CategoryMedical   DocumentCategory = "medical"
	CategoryPolice    DocumentCategory = "police_report"
	CategoryInsurance DocumentCategory = "insurance"
	CategoryPhoto     DocumentCategory = "photo"
	CategoryOther     DocumentCategory = "other"
)

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c DocumentCategory) bool {
	switch c {
	case CategoryMedical, CategoryPolice, CategoryInsurance, CategoryPhoto, CategoryOther:
		return true
	}
	return false
}

// Document is the metadata record for one uploaded file. The bytes live in
// object storage under StorageKey; the record is scoped to its owning user.
type Document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Category    DocumentCategory   `bson:"category" json:"category"`
	StorageKey  string             `bson:"storageKey" json:"-"`
	MimeType    string             `bson:"mimeType" json:"mimeType"`
	Size        int64              `bson:"size" json:"size"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
