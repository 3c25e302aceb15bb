package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"PostingsCleaner/internal/domain"
	"PostingsCleaner/internal/ports"
)

const (
	defaultEJMLoginURL = "https://econjobmarket.org/login"
	procedureHeading   = "Application procedure"
)

var (
	// ErrNoCSRFToken reports a login page without its csrf meta tag.
	ErrNoCSRFToken = errors.New("login page has no csrf token")
	// ErrNoProcedure reports a posting page without an application procedure panel.
	ErrNoProcedure = errors.New("no application procedure panel")
)

// EJMEnricher logs into EconJobMarket once and reads each posting's application panel.
type EJMEnricher struct {
	fetcher  fetcher
	loginURL string
	email    string
	password string
}

var _ ports.Enricher = (*EJMEnricher)(nil)

// NewEJMEnricher needs a client with a cookie jar (see NewClient) so the session
// cookie from Prepare is sent with every Enrich call.
func NewEJMEnricher(client *http.Client, loginURL, email, password, userAgent string) *EJMEnricher {
	if loginURL == "" {
		loginURL = defaultEJMLoginURL
	}
	return &EJMEnricher{
		fetcher:  newFetcher(client, userAgent),
		loginURL: loginURL,
		email:    email,
		password: password,
	}
}

// Name identifies the enricher in logs.
func (e *EJMEnricher) Name() string {
	return "ejm"
}

// Prepare reads the csrf token from the login form and submits the credentials.
func (e *EJMEnricher) Prepare(ctx context.Context) error {
	doc, err := e.fetcher.fetchDocument(ctx, e.loginURL)
	if err != nil {
		return fmt.Errorf("load login page: %w", err)
	}

	token, ok := doc.Find(`meta[name="csrf-token"]`).First().Attr("content")
	if !ok || token == "" {
		return ErrNoCSRFToken
	}

	form := url.Values{}
	form.Set("_token", token)
	form.Set("email", e.email)
	form.Set("password", e.password)
	if err := e.fetcher.postForm(ctx, e.loginURL, form); err != nil {
		return fmt.Errorf("log in: %w", err)
	}
	return nil
}

// Enrich returns the application procedure text and its first link.
func (e *EJMEnricher) Enrich(ctx context.Context, p domain.Posting) (domain.Enrichment, error) {
	if p.ExternalURL == "" {
		return domain.Enrichment{}, fmt.Errorf("posting %s has no url", p.ID)
	}

	doc, err := e.fetcher.fetchDocument(ctx, p.ExternalURL)
	if err != nil {
		return domain.Enrichment{}, err
	}

	heading := doc.Find("div.panel-heading").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == procedureHeading
	}).First()
	if heading.Length() == 0 {
		return domain.Enrichment{}, ErrNoProcedure
	}

	body := heading.Parent().Find("div.panel-body").First()
	if body.Length() == 0 {
		return domain.Enrichment{}, ErrNoProcedure
	}

	out := domain.Enrichment{Instructions: strings.TrimSpace(body.Text())}
	if href, ok := body.Find("a[href]").First().Attr("href"); ok {
		out.Link = strings.TrimSpace(href)
	}
	return out, nil
}
