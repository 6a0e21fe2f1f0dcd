// internal/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mcp-meal-plan/internal/models"
)

// ErrCatalogUnavailable wraps every failure to produce a catalog. Callers
// must not fall back to a made-up catalog.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Source supplies the catalog for one plan generation.
type Source interface {
	Groups() ([]models.FoodGroup, error)
}

// FileSource reads the catalog from disk on every call, so edits to the file
// are picked up by the next generation.
type FileSource struct {
	Path string
}

func (f FileSource) Groups() ([]models.FoodGroup, error) {
	return Load(f.Path)
}

// Static serves an already materialised catalog.
type Static []models.FoodGroup

func (s Static) Groups() ([]models.FoodGroup, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: no groups loaded", ErrCatalogUnavailable)
	}
	return s, nil
}

type rawGroup struct {
	Name  string   `json:"nombre"`
	Items []string `json:"alimentos"`
}

func Load(path string) ([]models.FoodGroup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer f.Close()

	groups, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// Decode reads the {"<id>": {"nombre": ..., "alimentos": [...]}} document.
// Groups are returned in ascending id order.
func Decode(r io.Reader) ([]models.FoodGroup, error) {
	var raw map[string]rawGroup
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrCatalogUnavailable, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: catalog has no groups", ErrCatalogUnavailable)
	}

	groups := make([]models.FoodGroup, 0, len(raw))
	seen := make(map[int]string, len(raw))
	for key, g := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%w: group id %q is not a non-negative integer", ErrCatalogUnavailable, key)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: group ids %q and %q are the same number", ErrCatalogUnavailable, prev, key)
		}
		seen[id] = key

		items := make([]string, len(g.Items))
		for i, item := range g.Items {
			items[i] = norm.NFC.String(item)
		}
		groups = append(groups, models.FoodGroup{
			ID:    id,
			Name:  norm.NFC.String(strings.TrimSpace(g.Name)),
			Items: items,
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}
