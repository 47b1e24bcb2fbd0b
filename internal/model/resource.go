package model

import "time"

type ResourceType string

const (
	Video    ResourceType = "video"
	Article  ResourceType = "article"
	Exercise ResourceType = "exercise"
	Project  ResourceType = "project"
	Quiz     ResourceType = "quiz"
)

// Resource is an atomic learning unit inside a module. Exercises and
// projects usually require a file upload before the module can be
// submitted for review.
// swagger:model Resource
type Resource struct {
	ID              string       `gorm:"primaryKey;size:200" json:"id"`
	ModuleID        string       `gorm:"size:100;not null;uniqueIndex:idx_module_order" json:"moduleId"`
	PathwayID       string       `gorm:"size:100;index;not null" json:"pathwayId"`
	Type            ResourceType `gorm:"size:50;not null" json:"type"`
	Title           string       `gorm:"size:500;not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description"`
	OrderIndex      int          `gorm:"not null;uniqueIndex:idx_module_order" json:"orderIndex"`
	DurationMinutes int          `json:"durationMinutes"`

	// File upload configuration
	RequiresUpload    bool     `gorm:"default:false" json:"requiresUpload"`
	AcceptedFileTypes []string `gorm:"serializer:json" json:"acceptedFileTypes"`
	MaxFileSizeMB     int64    `gorm:"default:50" json:"maxFileSizeMb"`
	AllowResubmission bool     `gorm:"default:true" json:"allowResubmission"`

	URL       string    `gorm:"type:text" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Resource) TableName() string {
	return "resources"
}

// MaxFileSizeBytes returns the upload size limit in bytes.
func (r *Resource) MaxFileSizeBytes() int64 {
	return r.MaxFileSizeMB * 1024 * 1024
}
