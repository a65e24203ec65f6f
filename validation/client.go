//go:generate mockgen -source=client.go -destination=mock/client.go -package=mock

package validation

import (
	"context"
	"errors"

	"github.com/foomo/contentserver-slugs/service/vo"
)

// APIVersion is pinned on every client used by the uniqueness checks.
const APIVersion = "2025-06-18"

var ErrNoClient = errors.New("no document store client configured")

// Client runs the slug uniqueness query against a document store.
type Client interface {
	IsSlugUnique(ctx context.Context, query vo.SlugQuery) (bool, error)
}

// ClientFactory hands out a client for the given configuration. It is
// called once per check.
type ClientFactory func(config vo.ClientConfig) Client

// Context is what the host passes to every validator next to the value.
type Context struct {
	Document  *vo.Document
	GetClient ClientFactory
}

// CustomValidator checks a slug. Bad input is reported through the
// returned Verdict, an error means the check itself could not run.
type CustomValidator func(ctx context.Context, value *vo.Slug, vctx Context) (vo.Verdict, error)
