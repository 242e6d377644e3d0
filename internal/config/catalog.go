package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// catalogFile is the YAML layout of a service catalog file:
//
//	services:
//	  - id: seo
//	    label: Search Engine Optimization
type catalogFile struct {
	Services []domain.Service `yaml:"services"`
}

// LoadCatalog returns the service catalog stored at path, or the built-in
// catalog when path is empty.
func LoadCatalog(path string) (domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(b)
}

// ParseCatalog decodes a YAML service catalog.
func ParseCatalog(b []byte) (domain.Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return domain.NewCatalog(f.Services)
}
