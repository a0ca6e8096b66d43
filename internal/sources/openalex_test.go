// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/haircheck/pkg/types"
)

const sampleWorksJSON = `{
  "meta": {"count": 2, "per_page": 200, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W1",
      "title": "Hair density after topical treatment",
      "abstract_inverted_index": {
        "Patients": [0],
        "showed": [1],
        "improved": [2],
        "density": [3]
      },
      "locations": [
        {
          "source": {
            "id": "https://openalex.org/S1",
            "display_name": "Journal of Dermatology",
            "type": "journal",
            "issn_l": "0385-2407",
            "is_oa": false
          }
        },
        {"source": null}
      ]
    },
    {
      "id": "https://openalex.org/W2",
      "title": "Proceedings paper without abstract",
      "locations": [
        {
          "source": {
            "id": "https://openalex.org/S2",
            "display_name": "Hair Conf",
            "type": "conference",
            "is_oa": true
          }
        },
        {
          "source": {
            "id": "https://openalex.org/S3",
            "display_name": "Preprint Repo",
            "type": "repository"
          }
        }
      ]
    }
  ]
}`

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func TestOpenAlexSearch(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"search":   q.Get("search"),
			"per_page": q.Get("per_page"),
			"page":     q.Get("page"),
			"filter":   q.Get("filter"),
			"mailto":   q.Get("mailto"),
		}
		fmt.Fprint(w, sampleWorksJSON)
	}))
	defer ts.Close()

	old := openAlexWorksBase
	openAlexWorksBase = ts.URL
	defer func() { openAlexWorksBase = old }()

	client := &OpenAlexClient{Client: ts.Client(), MailTo: "dev@example.com", Now: fixedClock}
	docs, err := client.Search(context.Background(),
		[]string{"hair", "density", "treatment"},
		types.SourcesConfig{})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotQuery["search"] != "hair OR density OR treatment" {
		t.Errorf("search param = %q, want OR-joined keywords", gotQuery["search"])
	}
	if gotQuery["per_page"] != "200" || gotQuery["page"] != "1" {
		t.Errorf("pagination = %s/%s, want 200/1", gotQuery["per_page"], gotQuery["page"])
	}
	if gotQuery["filter"] != "publication_year:2025|2026" {
		t.Errorf("filter = %q, want publication_year:2025|2026", gotQuery["filter"])
	}
	if gotQuery["mailto"] != "dev@example.com" {
		t.Errorf("mailto = %q, want dev@example.com", gotQuery["mailto"])
	}

	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}

	if docs[0].Abstract != "Patients showed improved density" {
		t.Errorf("reconstructed abstract = %q", docs[0].Abstract)
	}
	if len(docs[0].Locations) != 2 {
		t.Fatalf("doc 0 locations = %d, want 2", len(docs[0].Locations))
	}
	src := docs[0].Locations[0].Source
	if src == nil || src.DisplayName != "Journal of Dermatology" || src.Type != "journal" || src.ISSN != "0385-2407" {
		t.Errorf("doc 0 source = %+v", src)
	}
	if docs[0].Locations[1].Source != nil {
		t.Error("null source should stay nil")
	}

	// Missing abstract is empty text, not an error.
	if docs[1].Abstract != "" {
		t.Errorf("doc 1 abstract = %q, want empty", docs[1].Abstract)
	}
	if !docs[1].Locations[0].Source.IsOA {
		t.Error("doc 1 open-access flag lost")
	}
}

func TestOpenAlexSearchConfigOverrides(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"per_page": q.Get("per_page"),
			"page":     q.Get("page"),
			"filter":   q.Get("filter"),
		}
		fmt.Fprint(w, `{"meta":{},"results":[]}`)
	}))
	defer ts.Close()

	old := openAlexWorksBase
	openAlexWorksBase = ts.URL
	defer func() { openAlexWorksBase = old }()

	client := &OpenAlexClient{Client: ts.Client(), Now: fixedClock}
	_, err := client.Search(context.Background(), []string{"hair"}, types.SourcesConfig{
		PerPage:   500, // capped to the API maximum
		Page:      2,
		YearsBack: 3,
	})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotQuery["per_page"] != "200" {
		t.Errorf("per_page = %q, want capped 200", gotQuery["per_page"])
	}
	if gotQuery["page"] != "2" {
		t.Errorf("page = %q, want 2", gotQuery["page"])
	}
	if gotQuery["filter"] != "publication_year:2023|2024|2025|2026" {
		t.Errorf("filter = %q", gotQuery["filter"])
	}
}

func TestOpenAlexSearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"results": "not-an-array"}`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			old := openAlexWorksBase
			openAlexWorksBase = ts.URL
			defer func() { openAlexWorksBase = old }()

			client := &OpenAlexClient{Client: ts.Client(), Now: fixedClock}
			_, err := client.Search(context.Background(), []string{"hair"}, types.SourcesConfig{})
			if err == nil {
				t.Fatal("Search() expected error")
			}
		})
	}
}

func TestOpenAlexSearchEmptyQuery(t *testing.T) {
	client := &OpenAlexClient{Client: http.DefaultClient, Now: fixedClock}
	if _, err := client.Search(context.Background(), nil, types.SourcesConfig{}); err == nil {
		t.Fatal("Search() with no keywords expected error")
	}
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"empty map", map[string][]int{}, ""},
		{"nil map", nil, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			name: "word appearing at multiple positions",
			index: map[string][]int{
				"the": {0, 4},
				"cat": {1},
				"sat": {2},
				"on":  {3},
				"mat": {5},
			},
			want: "the cat sat on the mat",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reconstructAbstract(tt.index)
			if got != tt.want {
				t.Errorf("reconstructAbstract() = %q, want %q", got, tt.want)
			}
		})
	}
}
