package servicesync

import (
	"time"

	"bitbucket.org/mmdatafocus/service_sync/utils"
)

// SourceService is one record of the upstream services API. MobileNumber is
// the natural key shared with the local services table.
type SourceService struct {
	ID             int                   `json:"id"`
	Network        string                `json:"network"`
	MobileNumber   string                `json:"mobile_number"`
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	ServiceProduct *SourceServiceProduct `json:"service_product"`
}

type SourceServiceProduct struct {
	ID    int          `json:"id"`
	Type  string       `json:"type"`
	Price utils.Amount `json:"price"`
}

type sourcePage struct {
	Data        []SourceService `json:"data"`
	NextPageURL *string         `json:"next_page_url"`
}

// Discrepancy is a single field that differs between the upstream record and
// the local one, rendered for display.
type Discrepancy struct {
	Field  string `json:"field"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type RunOptions struct {
	// Resolve writes the upstream values over the local ones for every
	// matched record that has at least one discrepancy.
	Resolve bool
}

// Result holds the counters of one run. Processed and Discrepant are the two
// totals printed at the end; the rest break the run down further.
type Result struct {
	RunID           string    `json:"run_id"`
	Resolve         bool      `json:"resolve"`
	Processed       int       `json:"processed"`
	Discrepant      int       `json:"discrepant"`
	Missing         int       `json:"missing"`
	Resolved        int       `json:"resolved"`
	ResolveFailed   int       `json:"resolve_failed"`
	MappingsCreated int       `json:"mappings_created"`
	MappingErrors   int       `json:"mapping_errors"`
	LookupErrors    int       `json:"lookup_errors"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
