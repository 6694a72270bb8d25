package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"art-advisor/internal/domain"
)

const googleMaxResults = 10

// GoogleImageSource busca imagenes grandes con Google Custom Search.
type GoogleImageSource struct {
	svc *customsearch.Service
	cx  string
}

func NewGoogleImageSource(ctx context.Context, apiKey, searchEngineID string, opts ...option.ClientOption) (*GoogleImageSource, error) {
	if strings.TrimSpace(searchEngineID) == "" {
		return nil, fmt.Errorf("search engine id is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("customsearch service: %w", err)
	}
	return &GoogleImageSource{svc: svc, cx: searchEngineID}, nil
}

func (s *GoogleImageSource) Name() string { return "google" }

func (s *GoogleImageSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 || limit > googleMaxResults {
		limit = googleMaxResults
	}
	res, err := s.svc.Cse.List().
		Cx(s.cx).
		Q(query).
		SearchType("image").
		ImgSize("LARGE").
		Num(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, fmt.Errorf("%w: google status=%d: %s", domain.ErrSourceUnavailable, gerr.Code, gerr.Message)
		}
		return nil, fmt.Errorf("%w: google: %w", domain.ErrSourceUnavailable, err)
	}

	candidates := make([]domain.Candidate, 0, len(res.Items))
	for _, item := range res.Items {
		if item == nil {
			continue
		}
		c := domain.Candidate{
			SourceID: "google:" + item.Link,
			Source:   s.Name(),
			Title:    strings.TrimSpace(item.Title),
			ImageURL: strings.TrimSpace(item.Link),
		}
		if item.Image != nil {
			c.PageURL = item.Image.ContextLink
		}
		candidates = append(candidates, c)
	}
	return keepUsable(candidates), nil
}
