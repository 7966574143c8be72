package crawler

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/fetcher"
	"github.com/DanielDialektico/woocommerce-scraping-posting/internal/types"
)

// PageFetcher fetches one page by URL.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// Crawler discovers catalog URLs under a domain+prefix filter via
// breadth-first traversal from a seed page.
type Crawler struct {
	fetch         PageFetcher
	concurrency   int
	progressEvery int
	logger        *slog.Logger
}

// New creates a new Crawler.
func New(fetch PageFetcher, concurrency, progressEvery int, logger *slog.Logger) *Crawler {
	if concurrency < 1 {
		concurrency = 1
	}
	if progressEvery < 1 {
		progressEvery = 500
	}
	return &Crawler{
		fetch:         fetch,
		concurrency:   concurrency,
		progressEvery: progressEvery,
		logger:        logger.With("component", "crawler"),
	}
}

// Discover traverses from seed collecting every URL whose host equals the
// seed's host and which starts with prefix. An empty traversal relaxes the
// prefix by one path segment and restarts with a fresh visited set; once
// the prefix has been reduced to the domain root and still nothing is
// admitted, discovery fails with ErrEmptyCatalog.
func (c *Crawler) Discover(ctx context.Context, seed, prefix string) ([]string, error) {
	seedURL, err := url.Parse(seed)
	if err != nil || seedURL.Host == "" {
		return nil, types.ErrInvalidURL
	}
	domain := seedURL.Host

	for {
		urls, err := c.traverse(ctx, seed, domain, prefix)
		if err != nil {
			return nil, err
		}
		if len(urls) > 0 {
			c.logger.Info("crawl finished", "prefix", prefix, "urls", len(urls))
			return urls, nil
		}

		if atDomainRoot(prefix) {
			c.logger.Error("all prefix relaxations exhausted", "seed", seed)
			return nil, types.ErrEmptyCatalog
		}

		prefix = RelaxPrefix(prefix)
		c.logger.Info("empty result, retrying with relaxed prefix", "prefix", prefix)
	}
}

// traverse runs one full breadth-first pass. Fetches within a wave run
// concurrently; admission happens on the coordinating goroutine so that
// parallelism never changes which URLs are accepted.
func (c *Crawler) traverse(ctx context.Context, seed, domain, prefix string) ([]string, error) {
	c.logger.Info("getting catalog URLs", "prefix", prefix)

	fr := newFrontier()
	fr.Admit(seed)

	var admitted []string
	processed := 0

	for fr.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		wave := fr.PopWave(c.concurrency)
		pages := c.fetchWave(ctx, wave)

		for _, pg := range pages {
			processed++
			if processed%c.progressEvery == 0 {
				c.logger.Info("crawl progress", "pages_processed", processed, "queued", fr.Len())
			}

			if pg == nil {
				// Per-page fetch failures are logged inside fetchWave
				// and skipped; the traversal continues.
				continue
			}

			for _, link := range extractLinks(pg.Body, seed) {
				if !validURL(link, domain, prefix) {
					continue
				}
				if fr.Admit(link) {
					admitted = append(admitted, link)
				}
			}
		}
	}

	c.logger.Info("traversal complete", "pages_processed", processed, "urls_collected", len(admitted))
	return admitted, nil
}

// fetchWave fetches a batch of URLs concurrently. Results are positional;
// a failed fetch leaves a nil entry.
func (c *Crawler) fetchWave(ctx context.Context, wave []string) []*fetcher.Page {
	pages := make([]*fetcher.Page, len(wave))
	var wg sync.WaitGroup

	for i, rawURL := range wave {
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()
			pg, err := c.fetch.Fetch(ctx, rawURL)
			if err != nil {
				c.logger.Error("error processing URL", "url", rawURL, "error", err)
				return
			}
			pages[i] = pg
		}(i, rawURL)
	}

	wg.Wait()
	return pages
}

// validURL reports whether a URL belongs to the crawl domain and carries
// the category prefix. The prefix may be an absolute URL or a bare path;
// a bare path is matched against the URL's path component.
func validURL(rawURL, domain, prefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != domain {
		return false
	}
	p, err := url.Parse(prefix)
	if err != nil {
		return false
	}
	if p.Host != "" {
		return strings.HasPrefix(rawURL, prefix)
	}
	return strings.HasPrefix(u.Path, p.Path)
}

// extractLinks finds all anchor targets in the document, resolved against
// the base URL.
func extractLinks(body []byte, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		href = strings.TrimSpace(href)
		if href == "" ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "data:") {
			return
		}

		parsedHref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsedHref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})

	return links
}

// RelaxPrefix drops the last path segment of the prefix, broadening the
// crawl scope by one level.
func RelaxPrefix(prefix string) string {
	trimmed := strings.TrimRight(prefix, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return prefix
	}
	return trimmed[:idx] + "/"
}

// atDomainRoot reports whether the prefix has no path segments left to drop.
func atDomainRoot(prefix string) bool {
	u, err := url.Parse(prefix)
	if err != nil {
		return true
	}
	path := strings.Trim(u.Path, "/")
	return path == ""
}
