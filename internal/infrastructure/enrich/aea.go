package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/ports"
)

const (
	applyText     = "Apply for This Job"
	applyLinkText = "Apply for This Job (link)"
)

// ErrNoApplyLink reports a JOE listing without a recognizable apply button.
var ErrNoApplyLink = errors.New("no application link found")

// AEAEnricher reads the apply button from a JOE listing page.
type AEAEnricher struct {
	fetcher fetcher
}

var _ ports.Enricher = (*AEAEnricher)(nil)

// NewAEAEnricher wires an HTTP client; a nil client gets a 20s timeout.
func NewAEAEnricher(client *http.Client, userAgent string) *AEAEnricher {
	return &AEAEnricher{fetcher: newFetcher(client, userAgent)}
}

// Name identifies the enricher in logs.
func (a *AEAEnricher) Name() string {
	return "aea"
}

// Prepare is a no-op; JOE listings are public.
func (a *AEAEnricher) Prepare(context.Context) error {
	return nil
}

// Enrich fetches the listing page and returns its application link.
func (a *AEAEnricher) Enrich(ctx context.Context, p domain.Posting) (domain.Enrichment, error) {
	if p.ExternalURL == "" {
		return domain.Enrichment{}, fmt.Errorf("posting %s has no listing url", p.ID)
	}

	doc, err := a.fetcher.fetchDocument(ctx, p.ExternalURL)
	if err != nil {
		return domain.Enrichment{}, err
	}

	link, err := applyLink(doc)
	if err != nil {
		return domain.Enrichment{}, err
	}
	return domain.Enrichment{Link: link}, nil
}

// applyLink inspects every apply button; the last recognized one wins and an
// unrecognized variant fails the page.
func applyLink(doc *goquery.Document) (string, error) {
	var (
		link string
		err  error
	)
	doc.Find("a.button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if !strings.Contains(text, applyText) {
			return true
		}
		switch text {
		case applyLinkText:
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				err = fmt.Errorf("%w: apply button without href", ErrNoApplyLink)
				return false
			}
			link = strings.TrimSpace(href)
		case applyText:
			link = domain.JOEWebApply
		default:
			err = fmt.Errorf("%w: unexpected button %q", ErrNoApplyLink, text)
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if link == "" {
		return "", ErrNoApplyLink
	}
	return link, nil
}
