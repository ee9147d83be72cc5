package portal

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/northwind-msp/portal-api/internal/model"
	"github.com/northwind-msp/portal-api/internal/resilience"
	"github.com/northwind-msp/portal-api/pkg/notion"
)

// Documents lists the published support documents. The library lives in
// Notion and is the same for every client, but the fetch still resolves
// the identity so an expired session fails here and not deeper in.
func (s *Service) Documents(ctx context.Context, sess model.Session) ([]model.SupportDocument, error) {
	if _, err := s.resolver.Resolve(ctx, sess); err != nil {
		return nil, err
	}

	pages, err := resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts: 2,
		OnRetry:     resilience.RetryLogger("notion", "query documents"),
	}, func(ctx context.Context) ([]notionapi.Page, error) {
		return notion.QueryPublished(ctx, s.notion, s.notionDB)
	})
	if err != nil {
		return nil, err
	}

	docs := make([]model.SupportDocument, 0, len(pages))
	for _, page := range pages {
		docs = append(docs, pageToDocument(page))
	}
	return docs, nil
}

// pageToDocument maps a Notion page from the support library database
// to a SupportDocument. Missing properties degrade to empty fields, not
// errors; a half-filled page is still worth listing.
func pageToDocument(page notionapi.Page) model.SupportDocument {
	doc := model.SupportDocument{
		ID:        string(page.ID),
		URL:       page.URL,
		UpdatedAt: page.LastEditedTime,
	}

	if tp, ok := page.Properties["Title"].(*notionapi.TitleProperty); ok {
		for _, rt := range tp.Title {
			doc.Title += rt.PlainText
		}
	}
	if sp, ok := page.Properties["Category"].(*notionapi.SelectProperty); ok {
		doc.Category = sp.Select.Name
	}
	if up, ok := page.Properties["Link"].(*notionapi.URLProperty); ok && up.URL != "" {
		doc.URL = up.URL
	}

	return doc
}
