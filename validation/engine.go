package validation

import (
	"context"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/foomo/contentserver-slugs/service/vo"
)

const (
	MsgRequired = "Required"
	MsgInvalid  = "Invalid"
)

// Chain is an immutable rule builder and the unit Evaluate runs.
type Chain struct {
	required bool
	severity vo.Severity
	checks   []CustomValidator
}

var _ Rule[*Chain] = (*Chain)(nil)

func NewRule() *Chain {
	return &Chain{severity: vo.SeverityError}
}

func (c *Chain) clone() *Chain {
	n := *c
	n.checks = slices.Clone(c.checks)
	return &n
}

func (c *Chain) Required() *Chain {
	n := c.clone()
	n.required = true
	return n
}

func (c *Chain) Custom(fn CustomValidator) *Chain {
	n := c.clone()
	n.checks = append(n.checks, fn)
	return n
}

func (c *Chain) Error() *Chain {
	n := c.clone()
	n.severity = vo.SeverityError
	return n
}

func (c *Chain) Warning() *Chain {
	n := c.clone()
	n.severity = vo.SeverityWarning
	return n
}

func (c *Chain) IsRequired() bool {
	return c.required
}

func (c *Chain) Severity() vo.Severity {
	return c.severity
}

// Checks returns the names of the chain's validators in order.
func (c *Chain) Checks() []string {
	names := make([]string, len(c.checks))
	for i, fn := range c.checks {
		names[i] = CheckName(fn)
	}
	return names
}

// Evaluate runs every chain against value. All validators of a chain run,
// a failing one does not stop the next. The first error returned by a
// validator aborts the evaluation.
func Evaluate(ctx context.Context, chains []*Chain, value *vo.Slug, vctx Context) ([]vo.Issue, error) {
	var issues []vo.Issue
	for _, chain := range chains {
		if chain.required && isEmpty(value) {
			issues = append(issues, vo.Issue{
				Check:    "Required",
				Severity: chain.severity,
				Message:  MsgRequired,
			})
		}
		for _, fn := range chain.checks {
			verdict, err := fn(ctx, value, vctx)
			if err != nil {
				return nil, err
			}
			if verdict.Valid {
				continue
			}
			message := verdict.Message
			if message == "" {
				message = MsgInvalid
			}
			issues = append(issues, vo.Issue{
				Check:    CheckName(fn),
				Severity: chain.severity,
				Message:  message,
			})
		}
	}
	return issues, nil
}

// CheckName returns the unqualified function name of fn.
func CheckName(fn CustomValidator) string {
	if fn == nil {
		return ""
	}
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
