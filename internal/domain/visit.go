package domain

import "time"

// VisitRecord is what the site remembers about a visitor between page loads.
type VisitRecord struct {
	Count     int       `json:"count"`
	LastVisit time.Time `json:"last_visit"`
}

// Visit is the result of recording one page load.
type Visit struct {
	// Returning is false on the visitor's first recorded visit.
	Returning bool `json:"returning"`
	// VisitCount includes the visit just recorded.
	VisitCount int `json:"visit_count"`
	// LastVisit is the long date of the previous visit, empty on the first.
	LastVisit string `json:"last_visit,omitempty"`
	// Message is the welcome-back banner text, empty on the first visit.
	Message string `json:"message,omitempty"`
}
