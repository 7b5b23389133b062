package runner

import (
	"github.com/dadata-project/party-stats/pipeline"
)

// CreateCategories turns the configuration into the driven list of
// categories: one per status, plus one for the entity type when set. Every
// status is validated here, before any request is sent.
func CreateCategories(cfg *Config) ([]pipeline.Category, error) {
	categories, err := pipeline.StatusCategories(cfg.Query, cfg.Statuses, cfg.Count)
	if err != nil {
		return nil, err
	}

	if cfg.EntityType != "" {
		c, err := pipeline.TypeCategory(cfg.Query, cfg.EntityType, cfg.Count)
		if err != nil {
			return nil, err
		}

		categories = append(categories, c)
	}

	return categories, nil
}
