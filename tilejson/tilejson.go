// Package tilejson reads TileJSON tile-index documents: the metadata a
// vector-tile service publishes about its tileset, most importantly the tile
// URL templates and the zoom range the tiles exist for.
package tilejson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
)

// ErrFetch marks a failed metadata fetch. The fetch is never retried; a new
// data-source change is the only way out of the failure.
var ErrFetch = errors.New("tile metadata fetch failed")

// TileJSON is a tile-index document. Unknown keys are tolerated and kept in
// Extra so that vendor extensions survive a round trip through this package.
type TileJSON struct {
	Version     string `json:"tilejson,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Attribution string `json:"attribution,omitempty"`
	// Tile URL templates with {z}/{x}/{y} placeholders
	Tiles []string `validate:"required,min=1,dive,required" json:"tiles"`
	// Zoom range the service provides tiles for
	MinZoom int `default:"0" validate:"min=0,max=30" json:"minzoom"`
	MaxZoom int `default:"30" validate:"min=0,max=30,gtefield=MinZoom" json:"maxzoom"`
	// Geographic extent (west, south, east, north), if declared
	Bounds *[4]float64 `json:"bounds,omitempty"`
	Center *[3]float64 `json:"center,omitempty"`
	// Keys this package does not model, e.g. vector_layers
	Extra map[string]interface{} `json:"-"`
}

func (tj *TileJSON) UnmarshalJSON(data []byte) error {
	err := defaults.Set(tj)
	if err != nil {
		return err
	}

	tj.Extra, err = marshmallow.Unmarshal(data, tj, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	return validate.Struct(tj)
}

// Parse decodes and validates a TileJSON document.
func Parse(data []byte) (*TileJSON, error) {
	var tj TileJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return nil, err
	}
	return &tj, nil
}

// Fetch performs a single GET of the document at url. Any failure, including
// a non-2xx status or an invalid document, is wrapped as ErrFetch.
func Fetch(ctx context.Context, client *http.Client, url string) (*TileJSON, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status %s", ErrFetch, url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	tj, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	return tj, nil
}
