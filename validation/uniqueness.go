package validation

import (
	"context"

	"github.com/foomo/contentserver-slugs/docid"
	"github.com/foomo/contentserver-slugs/service/vo"
	"github.com/foomo/contentserver-slugs/slug"
)

// isUnique looks for another document of the same type using any spelling
// of the slug. The document's own published id, its draft and its release
// versions never count as conflicts. The store is read with the raw
// perspective so a draft cannot hide a conflicting published document.
func isUnique(ctx context.Context, value *vo.Slug, vctx Context) (bool, error) {
	if vctx.Document == nil || vctx.Document.ID == "" || isEmpty(value) {
		return true, nil
	}
	if vctx.GetClient == nil {
		return false, ErrNoClient
	}
	client := vctx.GetClient(vo.ClientConfig{
		APIVersion:  APIVersion,
		Perspective: vo.PerspectiveRaw,
	})
	if client == nil {
		return false, ErrNoClient
	}

	return client.IsSlugUnique(ctx, vo.SlugQuery{
		PublishedID: docid.PublishedID(vctx.Document.ID),
		Type:        vctx.Document.Type,
		Slugs:       slug.Variants(slug.Lower(value.Current)),
	})
}

// IsUniqueAcrossAllDocuments reports a conflict as a plain invalid verdict
// without message. It is meant for the slug field's isUnique option.
func IsUniqueAcrossAllDocuments(ctx context.Context, value *vo.Slug, vctx Context) (vo.Verdict, error) {
	unique, err := isUnique(ctx, value, vctx)
	if err != nil {
		return vo.Verdict{}, err
	}
	if !unique {
		return vo.Invalid(""), nil
	}
	return vo.Valid(), nil
}

// IsSlugUniqueAcrossAllDocuments reports a conflict with MsgNotUnique.
func IsSlugUniqueAcrossAllDocuments(ctx context.Context, value *vo.Slug, vctx Context) (vo.Verdict, error) {
	unique, err := isUnique(ctx, value, vctx)
	if err != nil {
		return vo.Verdict{}, err
	}
	if !unique {
		return vo.Invalid(MsgNotUnique), nil
	}
	return vo.Valid(), nil
}
