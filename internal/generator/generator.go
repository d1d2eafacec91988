package generator

import (
	"context"

	"github.com/ralt/ypm/internal/models"
)

// Generator interface for package list generators
type Generator interface {
	// Generate creates a source layout from the provided packages
	Generate(ctx context.Context, config *models.IndexConfig, packages []models.Archive) error

	// ValidatePackages checks if packages are valid for this generator
	ValidatePackages(packages []models.Archive) error
}
