// Seeds the pathway catalog from a YAML file.
//
// The catalog (pathways, modules, resources) is operator-managed and
// read-only at runtime; this script upserts it from a declarative file,
// e.g. after adding a new pathway or reordering modules.
//
// Usage: go run scripts/seed_catalog.go catalog.yaml
package main

import (
	"log"
	"os"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/internal/model"
	"bootcamp_backend/pkg/database"
	"bootcamp_backend/pkg/logger"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm/clause"
)

type catalogFile struct {
	Pathways []struct {
		ID         string `yaml:"id"`
		Slug       string `yaml:"slug"`
		Title      string `yaml:"title"`
		ShortTitle string `yaml:"short_title"`
		Instructor string `yaml:"instructor"`
		Color      string `yaml:"color"`
		Modules    []struct {
			ID              string `yaml:"id"`
			Title           string `yaml:"title"`
			Description     string `yaml:"description"`
			DurationMinutes int    `yaml:"duration_minutes"`
			Resources       []struct {
				ID                string   `yaml:"id"`
				Type              string   `yaml:"type"`
				Title             string   `yaml:"title"`
				Description       string   `yaml:"description"`
				URL               string   `yaml:"url"`
				DurationMinutes   int      `yaml:"duration_minutes"`
				RequiresUpload    bool     `yaml:"requires_upload"`
				AcceptedFileTypes []string `yaml:"accepted_file_types"`
				MaxFileSizeMB     int64    `yaml:"max_file_size_mb"`
			} `yaml:"resources"`
		} `yaml:"modules"`
	} `yaml:"pathways"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: go run scripts/seed_catalog.go <catalog.yaml>")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("failed to read catalog file: %v", err)
	}

	var catalog catalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		log.Fatalf("failed to parse catalog file: %v", err)
	}

	upsert := clause.OnConflict{UpdateAll: true}

	for _, p := range catalog.Pathways {
		pathway := model.Pathway{
			ID:           p.ID,
			Slug:         p.Slug,
			Title:        p.Title,
			ShortTitle:   p.ShortTitle,
			Instructor:   p.Instructor,
			Color:        p.Color,
			TotalModules: len(p.Modules),
		}
		if err := db.Clauses(upsert).Create(&pathway).Error; err != nil {
			log.Fatalf("pathway %s: %v", p.ID, err)
		}

		for mi, m := range p.Modules {
			module := model.Module{
				ID:              m.ID,
				PathwayID:       p.ID,
				Title:           m.Title,
				Description:     m.Description,
				OrderIndex:      mi,
				DurationMinutes: m.DurationMinutes,
			}
			if err := db.Clauses(upsert).Create(&module).Error; err != nil {
				log.Fatalf("module %s: %v", m.ID, err)
			}

			for ri, r := range m.Resources {
				maxSize := r.MaxFileSizeMB
				if maxSize == 0 {
					maxSize = 50
				}
				resource := model.Resource{
					ID:                r.ID,
					ModuleID:          m.ID,
					PathwayID:         p.ID,
					Type:              model.ResourceType(r.Type),
					Title:             r.Title,
					Description:       r.Description,
					OrderIndex:        ri,
					DurationMinutes:   r.DurationMinutes,
					RequiresUpload:    r.RequiresUpload,
					AcceptedFileTypes: r.AcceptedFileTypes,
					MaxFileSizeMB:     maxSize,
					URL:               r.URL,
				}
				if err := db.Clauses(upsert).Create(&resource).Error; err != nil {
					log.Fatalf("resource %s: %v", r.ID, err)
				}
			}
		}

		log.Printf("seeded pathway %s (%d modules)", p.ID, len(p.Modules))
	}
}
