package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Service is one selectable entry of the contact form's service dropdown.
type Service struct {
	ID    string `json:"id"    yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// DefaultServices is the catalog offered by the site when no catalog file is
// configured.
var DefaultServices = []Service{
	{ID: "seo", Label: "Search Engine Optimization"},
	{ID: "ppc", Label: "PPC Advertising"},
	{ID: "social", Label: "Social Media Marketing"},
	{ID: "web", Label: "Web Development"},
	{ID: "content", Label: "Content Marketing"},
	{ID: "analytics", Label: "Analytics & Reporting"},
	{ID: "full", Label: "Full Service Package"},
	{ID: "other", Label: "Other"},
}

// ErrEmptyCatalog is returned when a catalog would contain no services.
var ErrEmptyCatalog = errors.New("service catalog is empty")

// Catalog is an ordered, immutable set of services keyed by id.
type Catalog struct {
	services []Service
	labels   map[string]string
}

// NewCatalog validates services (non-empty unique ids, non-empty labels) and
// returns a Catalog preserving their order.
func NewCatalog(services []Service) (Catalog, error) {
	if len(services) == 0 {
		return Catalog{}, ErrEmptyCatalog
	}
	c := Catalog{
		services: make([]Service, 0, len(services)),
		labels:   make(map[string]string, len(services)),
	}
	for i, s := range services {
		id := strings.TrimSpace(s.ID)
		label := strings.TrimSpace(s.Label)
		if id == "" || label == "" {
			return Catalog{}, fmt.Errorf("service %d: id and label are required", i)
		}
		if _, dup := c.labels[id]; dup {
			return Catalog{}, fmt.Errorf("service %q: duplicate id", id)
		}
		c.labels[id] = label
		c.services = append(c.services, Service{ID: id, Label: label})
	}
	return c, nil
}

// DefaultCatalog returns the catalog built from DefaultServices.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(DefaultServices)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether id names a catalog service.
func (c Catalog) Has(id string) bool {
	_, ok := c.labels[id]
	return ok
}

// Label returns the human-readable label for id, or id itself when unknown.
func (c Catalog) Label(id string) string {
	if l, ok := c.labels[id]; ok {
		return l
	}
	return id
}

// Services returns a copy of the catalog entries in catalog order.
func (c Catalog) Services() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Len returns the number of services.
func (c Catalog) Len() int { return len(c.services) }
