// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the haircheck backend:
// configuration sections, user and detection records, and the venue records
// returned by the publication-source finder.
package types

import "time"

// User is an account identified by an opaque external ID. The service
// never issues IDs itself; the identity provider in front of it does.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Detection is one persisted analysis result: the winning class and
// confidence for an uploaded photo. The annotated image itself is stored
// as a JPEG blob and retrieved separately by ID.
type Detection struct {
	// ID is assigned by the store on insert.
	ID int64 `json:"id" yaml:"id"`

	// UserID is the owning account.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty"`

	// Class is the detected label (e.g. "alopecia areata").
	Class string `json:"class" yaml:"class"`

	// Confidence is the model confidence for the winning box, in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// DetectedAt is when the analysis ran.
	DetectedAt time.Time `json:"detected_at" yaml:"detected_at"`

	// ImageURL points at the stored annotated image. Filled by the API
	// layer, not the store.
	ImageURL string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// VenueRecord is one publishing venue aggregated from the works that
// qualified against a summary. Relevance is the arithmetic mean of the
// contributing works' similarity scores.
type VenueRecord struct {
	// Name is the venue display name exactly as the works API returned
	// it. Venue identity is this exact string.
	Name string `json:"name" yaml:"name"`

	// Type is the capitalized venue kind: "Journal" or "Conference".
	Type string `json:"type" yaml:"type"`

	// IsOA reports whether the venue is open access.
	IsOA bool `json:"is_oa" yaml:"is_oa"`

	// ISSN is the venue's linking ISSN, or "Unknown" when the API has none.
	ISSN string `json:"issn" yaml:"issn"`

	// Count is the number of qualifying work locations that contributed.
	Count int `json:"count" yaml:"count"`

	// Relevance is the mean similarity of contributing works to the summary.
	Relevance float64 `json:"relevance" yaml:"relevance"`
}
