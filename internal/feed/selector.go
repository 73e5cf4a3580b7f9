// Package feed gathers and samples entries from syndicated feeds.
package feed

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/bryan-buckman/syndicate/internal/model"
)

// Selector fetches feed entries and draws a random sample from the
// pooled result.
type Selector struct {
	parser *gofeed.Parser
	logger *logrus.Logger
}

// NewSelector creates a selector.
func NewSelector(logger *logrus.Logger) *Selector {
	return &Selector{
		parser: gofeed.NewParser(),
		logger: logger,
	}
}

// Select fetches every source, pools the entries and returns a uniform
// random sample of size min(count, pool size) without replacement.
// A source that errors or yields nothing contributes zero entries and
// does not fail the selection.
func (s *Selector) Select(ctx context.Context, sources []string, count int) []model.SourceItem {
	pool := s.fetchAll(ctx, sources)
	if count >= len(pool) {
		return pool
	}
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count]
}

// fetchAll fetches all sources in parallel and pools their entries.
// Order across sources is irrelevant; sampling shuffles anyway.
func (s *Selector) fetchAll(ctx context.Context, sources []string) []model.SourceItem {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		pool []model.SourceItem
	)
	for _, src := range sources {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			items, err := s.fetchOne(ctx, src)
			if err != nil {
				s.logger.WithError(err).WithField("source", src).Warn("Feed fetch failed, skipping source")
				return
			}
			mu.Lock()
			pool = append(pool, items...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()
	return pool
}

func (s *Selector) fetchOne(ctx context.Context, src string) ([]model.SourceItem, error) {
	parsed, err := s.parser.ParseURLWithContext(src, ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.SourceItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		description := entry.Description
		if description == "" {
			description = entry.Content
		}
		items = append(items, model.SourceItem{
			Title:       entry.Title,
			Description: description,
			ImageURL:    extractImageURL(entry),
		})
	}
	s.logger.WithFields(logrus.Fields{
		"source":  src,
		"entries": len(items),
	}).Debug("Fetched feed")
	return items, nil
}

// extractImageURL finds a usable display image for an entry, checking
// the item image, enclosures, and media extensions in that order.
// Returns "" when nothing suitable is attached.
func extractImageURL(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") || hasImageExtension(enc.URL) {
			return enc.URL
		}
	}
	if media, ok := entry.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}
	return ""
}

func hasImageExtension(url string) bool {
	lower := strings.ToLower(url)
	for _, suffix := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
