package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/filmoteka/movie_catalog/internal/models"
)

// Search runs a fuzzy full-text query over the movie index.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Movie, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "director", "genre"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Movie `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	movies := make([]models.Movie, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		movies[i] = hit.Source
	}
	return r.Hits.Total.Value, movies, nil
}

// IndexMovie writes or replaces the movie document.
func IndexMovie(ctx context.Context, es *elasticsearch.Client, index string, m models.Movie) error {
	doc := map[string]interface{}{
		"id":          m.ID,
		"title":       m.Title,
		"director":    m.Director,
		"releaseYear": m.ReleaseYear,
		"genre":       m.Genre,
		"rating":      m.Rating,
		"available":   m.Available,
		"rentalPrice": m.RentalPrice,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode movie document: %w", err)
	}

	res, err := es.Index(
		index,
		&buf,
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(m.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index movie: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index movie: %s", res.Status())
	}
	return nil
}

// DeleteMovie removes the movie document if present.
func DeleteMovie(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete movie document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete movie document: %s", res.Status())
	}
	return nil
}
