package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"art-advisor/internal/domain"
)

const (
	articDefaultBaseURL = "https://api.artic.edu/api/v1"
	articDefaultIIIF    = "https://www.artic.edu/iiif/2"
	articFields         = "id,title,artist_title,image_id,style_titles,classification_titles"
)

// ArticSource consulta el catalogo publico del Art Institute of Chicago.
type ArticSource struct {
	baseURL   string
	client    *http.Client
	dateStart int
	dateEnd   int
}

// ArticOption ajusta el adaptador del museo.
type ArticOption func(*ArticSource)

// WithDateRange limita los resultados a obras fechadas entre start y end (0 = abierto).
func WithDateRange(start, end int) ArticOption {
	return func(s *ArticSource) {
		s.dateStart = start
		s.dateEnd = end
	}
}

func WithHTTPClient(c *http.Client) ArticOption {
	return func(s *ArticSource) {
		if c != nil {
			s.client = c
		}
	}
}

func NewArticSource(baseURL string, opts ...ArticOption) *ArticSource {
	if baseURL == "" {
		baseURL = articDefaultBaseURL
	}
	s := &ArticSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ArticSource) Name() string { return "artic" }

func (s *ArticSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", articFields)
	if s.dateStart > 0 {
		params.Set("query[range][date_start][gte]", strconv.Itoa(s.dateStart))
	}
	if s.dateEnd > 0 {
		params.Set("query[range][date_end][lte]", strconv.Itoa(s.dateEnd))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/artworks/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: artic: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: artic read: %w", domain.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: artic status=%d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	var parsed articSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: artic decode: %w", domain.ErrSourceUnavailable, err)
	}

	iiif := strings.TrimRight(parsed.Config.IIIFURL, "/")
	if iiif == "" {
		iiif = articDefaultIIIF
	}

	candidates := make([]domain.Candidate, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if item.ImageID == "" {
			continue
		}
		terms := append(append([]string{}, item.StyleTitles...), item.ClassificationTitles...)
		candidates = append(candidates, domain.Candidate{
			SourceID: "artic:" + strconv.FormatInt(item.ID, 10),
			Source:   s.Name(),
			Title:    strings.TrimSpace(item.Title),
			Artist:   strings.TrimSpace(item.ArtistTitle),
			ImageURL: fmt.Sprintf("%s/%s/full/843,/0/default.jpg", iiif, item.ImageID),
			PageURL:  fmt.Sprintf("https://www.artic.edu/artworks/%d", item.ID),
			Terms:    terms,
		})
	}
	return keepUsable(candidates), nil
}

type articSearchResponse struct {
	Data []struct {
		ID                   int64    `json:"id"`
		Title                string   `json:"title"`
		ArtistTitle          string   `json:"artist_title"`
		ImageID              string   `json:"image_id"`
		StyleTitles          []string `json:"style_titles"`
		ClassificationTitles []string `json:"classification_titles"`
	} `json:"data"`
	Config struct {
		IIIFURL string `json:"iiif_url"`
	} `json:"config"`
}
