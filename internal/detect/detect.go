// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detect talks to the object-detection inference service and
// selects the winning detection for an uploaded photo. The model itself is
// an opaque oracle behind an HTTP endpoint; this package never sees weights
// or inference internals.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/haircheck/internal/httputil"
	"github.com/pdiddy/haircheck/pkg/types"
)

// DefaultConfidenceFloor is the minimum confidence for a detection to be
// accepted when the configuration does not override it.
const DefaultConfidenceFloor = 0.5

// ErrNoDetection reports that no candidate box reached the confidence
// floor. The API layer maps it to a not-found response.
var ErrNoDetection = errors.New("no detection above confidence floor")

// Detection is one labeled bounding box from the inference service.
// Box holds pixel coordinates as [x1, y1, x2, y2].
type Detection struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"`
}

// Detector produces candidate detections for an image.
type Detector interface {
	Detect(ctx context.Context, image []byte, contentType string) ([]Detection, error)
}

// HTTPDetector calls a detection inference service over HTTP.
type HTTPDetector struct {
	Client *http.Client
	Config types.DetectConfig
}

// Detect posts the raw image to the inference endpoint and decodes the
// candidate detections. Transient upstream failures are retried with
// backoff before an error surfaces.
func (d *HTTPDetector) Detect(ctx context.Context, image []byte, contentType string) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Config.BaseURL+"/detect", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", d.Config.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("detection service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detection service returned HTTP %d", resp.StatusCode)
	}

	var dr detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("parsing detection response: %w", err)
	}
	return dr.Detections, nil
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

// Best returns the single highest-confidence detection at or above floor.
// A non-positive floor falls back to DefaultConfidenceFloor. When nothing
// qualifies, Best returns ErrNoDetection.
func Best(dets []Detection, floor float64) (Detection, error) {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}

	var best Detection
	found := false
	for _, d := range dets {
		if d.Confidence < floor {
			continue
		}
		if !found || d.Confidence > best.Confidence {
			best = d
			found = true
		}
	}
	if !found {
		return Detection{}, ErrNoDetection
	}
	return best, nil
}
