package vo

const SlugType = "slug"

type Slug struct {
	Type    string `json:"_type"`            // Always "slug"
	Current string `json:"current"`          // The slug value, e.g. "/recipes/italian/"
	Source  string `json:"source,omitempty"` // Field the slug was generated from
}

func NewSlug(current string) *Slug {
	return &Slug{Type: SlugType, Current: current}
}

type Document struct {
	ID   string `json:"_id"`            // Possibly a draft or version id
	Type string `json:"_type"`          // Document type, e.g. "page"
	Slug *Slug  `json:"slug,omitempty"` // Current slug of the document
}

type Severity string

const (
	SeverityError   Severity = "error"   // Blocks saving
	SeverityWarning Severity = "warning" // Advisory only
)

// Verdict is the outcome of a single check.
type Verdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func Valid() Verdict {
	return Verdict{Valid: true}
}

func Invalid(message string) Verdict {
	return Verdict{Message: message}
}

type Issue struct {
	Check    string   `json:"check"` // Name of the failing check
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

type Report struct {
	Valid      bool    `json:"valid"`                // False if any error severity issue exists
	Slug       string  `json:"slug"`                 // The validated value
	Normalized string  `json:"normalized,omitempty"` // Canonical form of the value
	Issues     []Issue `json:"issues,omitempty"`
}

func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(severity Severity) []Issue {
	var issues []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Perspective selects how the document store overlays drafts and releases.
type Perspective string

const (
	PerspectiveRaw       Perspective = "raw"       // Every stored document, no overlay
	PerspectivePublished Perspective = "published" // Published documents only
	PerspectiveDrafts    Perspective = "drafts"    // Drafts overlaid on published documents
)

type ClientConfig struct {
	APIVersion  string
	Perspective Perspective
}

// SlugQuery asks whether any document of Type other than PublishedID and
// its versions uses one of Slugs.
type SlugQuery struct {
	PublishedID string   `json:"publishedId"`
	Type        string   `json:"type"`
	Slugs       []string `json:"slugs"`
}
