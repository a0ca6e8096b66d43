// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/pdiddy/haircheck/pkg/types"
)

func TestDetectionHistory(t *testing.T) {
	dets := []types.Detection{
		{Class: "alopecia areata", Confidence: 0.87, DetectedAt: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)},
		{Class: "dandruff", Confidence: 0.61, DetectedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := DetectionHistory(&buf, "u1", dets); err != nil {
		t.Fatalf("DetectionHistory() error: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header: %q", buf.Bytes()[:8])
	}
	if buf.Len() < 500 {
		t.Errorf("output suspiciously small: %d bytes", buf.Len())
	}
}

func TestDetectionHistoryManyRows(t *testing.T) {
	// Enough rows to force a page break.
	dets := make([]types.Detection, 80)
	for i := range dets {
		dets[i] = types.Detection{
			Class:      "dandruff",
			Confidence: 0.5,
			DetectedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		}
	}

	var buf bytes.Buffer
	if err := DetectionHistory(&buf, "u1", dets); err != nil {
		t.Fatalf("DetectionHistory() error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with %PDF header")
	}
}
