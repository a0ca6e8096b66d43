// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pdiddy/haircheck/internal/annotate"
	"github.com/pdiddy/haircheck/internal/detect"
	"github.com/pdiddy/haircheck/internal/report"
	"github.com/pdiddy/haircheck/internal/sources"
	"github.com/pdiddy/haircheck/internal/store"
	"github.com/pdiddy/haircheck/pkg/types"
)

// maxUploadBytes bounds the photo size read into memory.
const maxUploadBytes = 16 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// handleLogin upserts the user record for an externally issued identity.
func (s *Server) handleLogin(c echo.Context) error {
	var u types.User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if u.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	if err := s.store.EnsureUser(c.Request().Context(), u); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return c.JSON(http.StatusOK, u)
}

type detectionInfo struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type analyzeResponse struct {
	Image         string        `json:"image"`
	DetectionInfo detectionInfo `json:"detection_info"`
}

// handleAnalyze runs an uploaded photo through the detection oracle,
// annotates the winning box, persists the result, and returns the
// annotated image inline.
func (s *Server) handleAnalyze(c echo.Context) error {
	userID := c.FormValue("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	contentType := fh.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("unsupported image type %q, want image/jpeg or image/png", contentType))
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()
	image, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	ctx := c.Request().Context()
	dets, err := s.detector.Detect(ctx, image, contentType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "detection service unavailable").SetInternal(err)
	}

	best, err := detect.Best(dets, s.cfg.Detect.ConfidenceFloor)
	if errors.Is(err, detect.ErrNoDetection) {
		return echo.NewHTTPError(http.StatusNotFound, "no condition detected in image")
	}
	if err != nil {
		return err
	}

	annotated, err := annotate.JPEG(image, best)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "undecodable image").SetInternal(err)
	}

	if _, err := s.store.InsertDetection(ctx, types.Detection{
		UserID:     userID,
		Class:      best.Class,
		Confidence: best.Confidence,
		DetectedAt: time.Now().UTC(),
	}, annotated); err != nil {
		return fmt.Errorf("saving detection: %w", err)
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		Image:         base64.StdEncoding.EncodeToString(annotated),
		DetectionInfo: detectionInfo{Class: best.Class, Confidence: best.Confidence},
	})
}

// handleInsights returns a user's detections grouped by class, each entry
// carrying a link to its stored image.
func (s *Server) handleInsights(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	groups, err := s.store.Insights(c.Request().Context(), userID)
	if err != nil {
		return fmt.Errorf("loading insights: %w", err)
	}
	for _, g := range groups {
		for i := range g.Detections {
			g.Detections[i].ImageURL = s.imageURL(g.Detections[i].ID)
		}
	}
	if groups == nil {
		groups = []store.ClassGroup{}
	}
	return c.JSON(http.StatusOK, map[string]any{"insights": groups})
}

// handleExport streams a PDF of the user's detection history.
func (s *Server) handleExport(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	dets, err := s.store.UserDetections(c.Request().Context(), userID)
	if err != nil {
		return fmt.Errorf("loading detections: %w", err)
	}
	if len(dets) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no detections to export")
	}

	var buf bytes.Buffer
	if err := report.DetectionHistory(&buf, userID, dets); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="detections.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

// handleSuggestion looks up the stored recommendation for a class.
func (s *Server) handleSuggestion(c echo.Context) error {
	class := c.Param("class")

	rec, err := s.store.Recommendation(c.Request().Context(), class)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no recommendation for class")
	}
	if err != nil {
		return fmt.Errorf("loading recommendation: %w", err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"class":          class,
		"recommendation": rec,
	})
}

// handleImage serves the stored annotated JPEG for a detection.
func (s *Server) handleImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid detection id")
	}

	image, err := s.store.DetectionImage(c.Request().Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	if err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	return c.Blob(http.StatusOK, "image/jpeg", image)
}

type sourcesRequest struct {
	Summary string `json:"summary"`
}

// handleSources runs the publication-source pipeline for a summary and
// returns the ranked venues.
func (s *Server) handleSources(c echo.Context) error {
	key, err := sources.ParseSortKey(c.QueryParam("sort_by"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req sourcesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := s.finder.Find(c.Request().Context(), req.Summary, key)
	switch {
	case errors.Is(err, sources.ErrEmptySummary):
		return echo.NewHTTPError(http.StatusBadRequest, "summary is required")
	case errors.Is(err, sources.ErrUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, "works search unavailable").SetInternal(err)
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) imageURL(id int64) string {
	return fmt.Sprintf("%s/api/image/%d", s.cfg.Server.PublicBaseURL, id)
}
