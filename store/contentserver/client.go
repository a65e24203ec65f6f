// Package contentserver checks slug uniqueness by resolving the slug
// variants as URIs on a foomo content server.
//
// The content server resolves URIs case-sensitively. Slugs are queried in
// lower case, so a document stored under "/Foo/" does not conflict with
// "/foo/" on this backend. Keep stored URIs lower case, which the slug
// validators enforce for new documents anyway.
package contentserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/docid"
	"github.com/foomo/contentserver-slugs/service/vo"
)

type contentGetter interface {
	GetContent(ctx context.Context, request *requests.Content) (*content.SiteContent, error)
}

type Settings struct {
	ContentServerURL string
	Env              *requests.Env
	// MimeTypes maps document types to content server mime types. Types
	// without an entry are used as mime type as they are.
	MimeTypes map[string]string
}

func (settings Settings) mimeType(documentType string) string {
	if mimeType, ok := settings.MimeTypes[documentType]; ok {
		return mimeType
	}
	return documentType
}

// Client resolves every slug variant as a URI on the content server. The
// content server has no draft overlay, so every read is a raw read.
type Client struct {
	contentServerClient contentGetter
	settings            Settings
	logger              *zap.Logger
}

func New(settings Settings, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	contentServerClient := contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			settings.ContentServerURL,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
	return newClient(settings, contentServerClient, logger)
}

func newClient(settings Settings, getter contentGetter, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.Env == nil {
		settings.Env = &requests.Env{}
	}
	return &Client{
		contentServerClient: getter,
		settings:            settings,
		logger:              logger,
	}
}

// isValidURI checks if a URI can be resolved by the content server
func isValidURI(uri string) bool {
	return uri != "" && strings.HasPrefix(uri, "/")
}

func (c *Client) IsSlugUnique(ctx context.Context, query vo.SlugQuery) (bool, error) {
	mimeType := c.settings.mimeType(query.Type)
	for _, uri := range query.Slugs {
		if !isValidURI(uri) {
			continue
		}
		siteContent, err := c.contentServerClient.GetContent(ctx, &requests.Content{
			URI:   uri,
			Env:   c.settings.Env,
			Nodes: map[string]*requests.Node{},
		})
		if err != nil {
			return false, fmt.Errorf("failed to get content for %q: %w", uri, err)
		}
		if conflicts(siteContent, uri, mimeType, query.PublishedID) {
			c.logger.Debug("slug taken",
				zap.String("uri", uri),
				zap.String("id", siteContent.Item.ID),
				zap.String("publishedId", query.PublishedID),
			)
			return false, nil
		}
	}
	return true, nil
}

// conflicts reports whether the resolved content is a different document of
// the same mime type living exactly at uri. The content server may answer
// an unknown URI with a fallback item, hence the URI comparison.
func conflicts(siteContent *content.SiteContent, uri, mimeType, publishedID string) bool {
	if siteContent == nil || siteContent.Item == nil {
		return false
	}
	item := siteContent.Item
	if !strings.EqualFold(item.URI, uri) {
		return false
	}
	if item.MimeType != mimeType {
		return false
	}
	return !docid.VersionOf(item.ID, publishedID)
}
