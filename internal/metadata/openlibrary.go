package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const openLibraryURL = "https://openlibrary.org/search.json"

// OpenLibrarySource searches the Open Library book database.
type OpenLibrarySource struct {
	client  *http.Client
	baseURL string
}

func NewOpenLibrarySource(timeout time.Duration) *OpenLibrarySource {
	return &OpenLibrarySource{
		client:  &http.Client{Timeout: timeout},
		baseURL: openLibraryURL,
	}
}

func (s *OpenLibrarySource) ID() string { return "openlibrary" }

type openLibraryDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Key              string   `json:"key"`
	CoverID          int      `json:"cover_i"`
}

type openLibraryResponse struct {
	Docs []openLibraryDoc `json:"docs"`
}

func (s *OpenLibrarySource) Search(ctx context.Context, query string) ([]Candidate, error) {
	u := s.baseURL + "?q=" + url.QueryEscape(query) + "&limit=10"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary status %d", resp.StatusCode)
	}

	var body openLibraryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode openlibrary response: %w", err)
	}

	results := make([]Candidate, 0, len(body.Docs))
	for _, doc := range body.Docs {
		c := Candidate{
			Title:      doc.Title,
			Year:       doc.FirstPublishYear,
			Identifier: doc.Key,
			Source:     s.ID(),
		}
		if len(doc.AuthorName) > 0 {
			c.Creator = doc.AuthorName[0]
		}
		if doc.CoverID != 0 {
			c.ImageURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", doc.CoverID)
		}
		results = append(results, c)
	}
	return results, nil
}
