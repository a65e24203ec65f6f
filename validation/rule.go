package validation

// Rule is the part of a host's rule builder the slug validations need.
// Implementations are expected to be immutable: every call returns a new
// rule and leaves the receiver untouched.
type Rule[R any] interface {
	Required() R
	Custom(fn CustomValidator) R
	Error() R
	Warning() R
}

type Option func(*options)

type options struct {
	uniqueness bool
}

// WithUniqueness puts IsSlugUniqueAcrossAllDocuments in front of the error
// chain. Without it no document store is queried.
func WithUniqueness() Option {
	return func(o *options) {
		o.uniqueness = true
	}
}

// SlugValidations returns the slug field's rule groups:
//
//  1. required, lower case, structure and special symbols as errors
//  2. empty spaces as a warning
func SlugValidations[R Rule[R]](rule R, opts ...Option) []R {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	errorRule := rule.Required()
	if o.uniqueness {
		errorRule = errorRule.Custom(IsSlugUniqueAcrossAllDocuments)
	}
	errorRule = errorRule.
		Custom(ValidateIsLowerCase).
		Custom(ValidateHasIncorrectStructure).
		Custom(ValidateHasSpecialSymbols).
		Error()

	return []R{
		errorRule,
		rule.Custom(ValidateHasEmptySpaces).Warning(),
	}
}
