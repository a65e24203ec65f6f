package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/slug"
	"github.com/foomo/contentserver-slugs/validation"
)

var (
	ErrEmptySource   = errors.New("source does not contain any slug characters")
	ErrSlugExhausted = errors.New("no unique slug found")
)

type Service interface {
	ValidateSlug(ctx context.Context, doc *vo.Document, value *vo.Slug) (*vo.Report, error)
	GenerateSlug(ctx context.Context, doc *vo.Document, source string) (string, error)
	NormalizeSlug(s string) string
	SlugVariants(s string) []string
}

type Settings struct {
	// UniqueSlugs adds the uniqueness check to the error chain.
	UniqueSlugs bool
	// MaxAttempts bounds the suffixes tried by GenerateSlug.
	MaxAttempts int
}

type service struct {
	settings  Settings
	getClient validation.ClientFactory
	logger    *zap.Logger
	rules     []*validation.Chain
}

// NewService creates the slug service. getClient may be nil when no document
// store is available; generated slugs are then accepted as they are.
func NewService(
	settings Settings,
	getClient validation.ClientFactory,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.MaxAttempts < 1 {
		settings.MaxAttempts = 10
	}
	var opts []validation.Option
	if settings.UniqueSlugs {
		opts = append(opts, validation.WithUniqueness())
	}
	return &service{
		settings:  settings,
		getClient: getClient,
		logger:    logger,
		rules:     validation.SlugValidations(validation.NewRule(), opts...),
	}
}

func (s *service) validationContext(doc *vo.Document) validation.Context {
	return validation.Context{
		Document:  doc,
		GetClient: s.getClient,
	}
}

func (s *service) ValidateSlug(ctx context.Context, doc *vo.Document, value *vo.Slug) (*vo.Report, error) {
	issues, err := validation.Evaluate(ctx, s.rules, value, s.validationContext(doc))
	if err != nil {
		s.logger.Error("failed to validate slug", zap.Error(err))
		return nil, fmt.Errorf("failed to validate slug: %w", err)
	}

	report := &vo.Report{
		Valid:  true,
		Issues: issues,
	}
	if value != nil {
		report.Slug = value.Current
		report.Normalized = slug.Normalize(value.Current)
	}
	for _, issue := range issues {
		if issue.Severity == vo.SeverityError {
			report.Valid = false
			break
		}
	}

	s.logger.Debug("validated slug",
		zap.String("slug", report.Slug),
		zap.Bool("valid", report.Valid),
		zap.Int("issues", len(issues)),
	)
	return report, nil
}

// GenerateSlug slugifies source and, if the result is taken, appends -2, -3,
// ... to its last segment until a free slug is found.
func (s *service) GenerateSlug(ctx context.Context, doc *vo.Document, source string) (string, error) {
	base := slug.Slugify(source)
	if base == "" {
		return "", ErrEmptySource
	}
	if s.getClient == nil {
		return base, nil
	}

	vctx := s.validationContext(doc)
	for attempt := 1; attempt <= s.settings.MaxAttempts; attempt++ {
		candidate := withSuffix(base, attempt)
		verdict, err := validation.IsUniqueAcrossAllDocuments(ctx, &vo.Slug{
			Type:    vo.SlugType,
			Current: candidate,
		}, vctx)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if verdict.Valid {
			return candidate, nil
		}
		s.logger.Debug("slug taken", zap.String("slug", candidate))
	}
	return "", fmt.Errorf("%w after %d attempts: %s", ErrSlugExhausted, s.settings.MaxAttempts, base)
}

func withSuffix(normalized string, attempt int) string {
	if attempt <= 1 {
		return normalized
	}
	return strings.TrimSuffix(normalized, slug.Separator) + "-" + strconv.Itoa(attempt) + slug.Separator
}

func (s *service) NormalizeSlug(value string) string {
	return slug.Normalize(value)
}

func (s *service) SlugVariants(value string) []string {
	return slug.Variants(value)
}
