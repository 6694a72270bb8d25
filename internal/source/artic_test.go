package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"art-advisor/internal/domain"
)

func TestArticSourceSearch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/artworks/search", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 27992, "title": "A Sunday on La Grande Jatte", "artist_title": "Georges Seurat", "image_id": "1adf2696", "style_titles": ["Pointillism"], "classification_titles": ["oil on canvas"]},
				{"id": 11, "title": "No image", "image_id": null},
				{"id": 42, "title": "Untitled", "artist_title": "", "image_id": "abc"}
			],
			"config": {"iiif_url": "https://iiif.example.org/iiif/2"}
		}`))
	}))
	defer srv.Close()

	src := NewArticSource(srv.URL+"/", WithDateRange(1950, 2024), WithHTTPClient(srv.Client()))
	candidates, err := src.Search(context.Background(), "heavy texture", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, "artic:27992", first.SourceID)
	assert.Equal(t, "artic", first.Source)
	assert.Equal(t, "Georges Seurat", first.Artist)
	assert.Equal(t, "https://iiif.example.org/iiif/2/1adf2696/full/843,/0/default.jpg", first.ImageURL)
	assert.Equal(t, "https://www.artic.edu/artworks/27992", first.PageURL)
	assert.Equal(t, []string{"Pointillism", "oil on canvas"}, first.Terms)
	assert.Equal(t, "artic:42", candidates[1].SourceID)

	assert.Equal(t, "heavy texture", got.Get("q"))
	assert.Equal(t, "5", got.Get("limit"))
	assert.Equal(t, articFields, got.Get("fields"))
	assert.Equal(t, "1950", got.Get("query[range][date_start][gte]"))
	assert.Equal(t, "2024", got.Get("query[range][date_end][lte]"))
}

func TestArticSourceDefaultsIIIFBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("query[range][date_start][gte]"))
		_, _ = w.Write([]byte(`{"data": [{"id": 1, "title": "x", "image_id": "img"}]}`))
	}))
	defer srv.Close()

	candidates, err := NewArticSource(srv.URL).Search(context.Background(), "x", 1)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://www.artic.edu/iiif/2/img/full/843,/0/default.jpg", candidates[0].ImageURL)
}

func TestArticSourceZeroResultsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	candidates, err := NewArticSource(srv.URL).Search(context.Background(), "nothing", 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestArticSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewArticSource(srv.URL).Search(context.Background(), "x", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}

func TestArticSourceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewArticSource(srv.URL).Search(context.Background(), "x", 10)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
}
