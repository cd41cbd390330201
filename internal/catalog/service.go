// Package catalog holds the curriculum of learning modules.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mokbank/mokbank/internal/model"
)

// Service provides in-memory lookup over the curriculum.
type Service struct {
	modules []model.LearningModule
	byID    map[string]model.LearningModule
}

// NewService creates a Service from a slice of modules.
func NewService(modules []model.LearningModule) *Service {
	byID := make(map[string]model.LearningModule, len(modules))
	for _, m := range modules {
		byID[m.ID] = m
	}
	return &Service{modules: modules, byID: byID}
}

// Load reads catalog/modules.csv from a data root.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "catalog", "modules.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	modules, err := ReadModules(f)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return NewService(modules), nil
}

// All returns all modules.
func (s *Service) All() []model.LearningModule {
	return s.modules
}

// Get returns a module by ID.
func (s *Service) Get(id string) (model.LearningModule, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Exists reports whether a module ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Save writes the curriculum to catalog/modules.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "catalog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "modules.csv"))
	if err != nil {
		return fmt.Errorf("creating catalog file: %w", err)
	}
	defer f.Close()

	if err := WriteModules(f, s.modules); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
