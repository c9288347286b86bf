package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"medinfo-backend/internal/catalog"
	"medinfo-backend/internal/docstore"
)

// perCollectionLimit caps how many hits each collection contributes.
const perCollectionLimit = 10

// target is one searchable collection. The product search spans the
// medicine-oriented entities only; content types like news or banners
// are not searchable.
type target struct {
	Type       string
	APIPath    string
	Collection string
	Field      string
}

var targets = []target{
	{Type: "pharmaceutical", APIPath: "pharmaceutical", Collection: "pharmaceuticals", Field: "name"},
	{Type: "brand", APIPath: "brand", Collection: "brands", Field: "name"},
	{Type: "generic", APIPath: "generic", Collection: "generics", Field: "name"},
}

// Result is one tagged search hit. Type and APIPath let the frontend
// route to the matching detail page.
type Result struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	APIPath string    `json:"apiPath"`
}

// Service fans a query out over the searchable collections and merges
// the hits into one ranked list.
type Service struct {
	store    docstore.Store
	collator *collate.Collator
}

func NewService(store docstore.Store) *Service {
	return &Service{
		store:    store,
		collator: collate.New(language.English, collate.IgnoreCase),
	}
}

// Search runs the case-insensitive substring query against every
// target collection concurrently. Any collection failure fails the
// whole search; a partial result would silently hide entities.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, catalog.NewValidation("Search query is required")
	}

	buckets := make([][]Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)

	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			docs, err := s.store.Find(gctx, t.Collection, docstore.Query{
				Contains:   &docstore.Contains{Field: t.Field, Value: query},
				SortNewest: true,
				Limit:      perCollectionLimit,
			})
			if err != nil {
				return fmt.Errorf("search %s: %w", t.Collection, err)
			}

			hits := make([]Result, 0, len(docs))
			for _, doc := range docs {
				hits = append(hits, Result{
					ID:      doc.ID,
					Name:    doc.StringField(t.Field),
					Type:    t.Type,
					APIPath: t.APIPath,
				})
			}
			buckets[i] = hits
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]Result, 0, len(targets)*perCollectionLimit)
	for _, bucket := range buckets {
		merged = append(merged, bucket...)
	}

	s.rank(merged, query)
	return merged, nil
}

// rank orders hits so the best matches surface first: names that start
// with the query, then earlier match positions, then collated name
// order as a deterministic tie-break.
func (s *Service) rank(results []Result, query string) {
	q := strings.ToLower(query)

	sort.SliceStable(results, func(i, j int) bool {
		ni := strings.ToLower(results[i].Name)
		nj := strings.ToLower(results[j].Name)

		pi := strings.HasPrefix(ni, q)
		pj := strings.HasPrefix(nj, q)
		if pi != pj {
			return pi
		}

		ii := strings.Index(ni, q)
		ij := strings.Index(nj, q)
		if ii != ij {
			return ii < ij
		}

		return s.collator.CompareString(results[i].Name, results[j].Name) < 0
	})
}
