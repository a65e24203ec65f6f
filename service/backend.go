package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/foomo/contentserver/requests"
	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/config"
	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/store/contentserver"
	"github.com/foomo/contentserver-slugs/store/postgres"
	"github.com/foomo/contentserver-slugs/store/query"
	"github.com/foomo/contentserver-slugs/validation"
)

// NewClientFactory connects the configured document store. The returned
// close func releases its resources and is never nil. With the "none"
// backend the factory is nil.
func NewClientFactory(ctx context.Context, cfg config.Store, httpClient *http.Client, logger *zap.Logger) (validation.ClientFactory, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("backend", cfg.Backend))

	switch cfg.Backend {
	case config.BackendNone, "":
		logger.Info("no document store configured")
		return nil, noop, nil

	case config.BackendQuery:
		client := query.New(query.Config{
			BaseURL: cfg.Query.BaseURL,
			Dataset: cfg.Query.Dataset,
			Token:   cfg.Query.Token,
			Timeout: cfg.Query.Timeout,
		}, logger)
		return func(clientConfig vo.ClientConfig) validation.Client {
			return client.WithConfig(clientConfig)
		}, noop, nil

	case config.BackendContentServer:
		client := contentserver.New(contentserver.Settings{
			ContentServerURL: cfg.ContentServer.URL,
			Env: &requests.Env{
				Dimensions: cfg.ContentServer.Dimensions,
				Groups:     cfg.ContentServer.Groups,
			},
			MimeTypes: cfg.ContentServer.MimeTypes,
		}, httpClient, logger)
		return staticFactory(client), noop, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			return nil, noop, err
		}
		if cfg.Postgres.Migrate {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return nil, noop, err
			}
		}
		store := postgres.New(db, logger)
		return staticFactory(store), db.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}

// staticFactory serves backends without a draft overlay, for which every
// read already is a raw read.
func staticFactory(client validation.Client) validation.ClientFactory {
	return func(vo.ClientConfig) validation.Client {
		return client
	}
}
