package model

import "time"

// Pathway is a top-level curriculum track (e.g. "Image Generation").
// The catalog is seeded by operators and read-only at runtime.
// swagger:model Pathway
type Pathway struct {
	ID           string    `gorm:"primaryKey;size:100" json:"id"`
	Slug         string    `gorm:"size:100;unique;not null" json:"slug"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	ShortTitle   string    `gorm:"size:100;not null" json:"shortTitle"`
	Instructor   string    `gorm:"size:255;not null" json:"instructor"`
	Color        string    `gorm:"size:100" json:"color"`
	TotalModules int       `gorm:"default:0" json:"totalModules"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Pathway) TableName() string {
	return "pathways"
}

// Module is an ordered group of resources within a pathway.
// swagger:model Module
type Module struct {
	ID              string    `gorm:"primaryKey;size:100" json:"id"`
	PathwayID       string    `gorm:"size:100;not null;uniqueIndex:idx_pathway_order" json:"pathwayId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	OrderIndex      int       `gorm:"not null;uniqueIndex:idx_pathway_order" json:"orderIndex"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Module) TableName() string {
	return "modules"
}
