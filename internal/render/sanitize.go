package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedElements is the tag allow-list applied to every rendered fragment.
var AllowedElements = []string{
	"h1", "h2", "h3", "h4", "h5", "h6",
	"p", "br",
	"strong", "b", "em", "i",
	"code", "pre",
	"ul", "ol", "li",
	"blockquote",
	"table", "thead", "tbody", "tfoot", "tr", "th", "td",
}

var classValueRe = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

// Sanitizer strips every element and attribute that is not on the allow-list
// while keeping the text inside removed elements. Script and style bodies are
// dropped entirely. The output is stable under repeated sanitization.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the allow-list policy. The only attribute kept is class.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedElements...)
	p.AllowAttrs("class").Matching(classValueRe).Globally()
	return &Sanitizer{policy: p}
}

// Sanitize filters fragment through the allow-list.
func (s *Sanitizer) Sanitize(fragment string) string {
	return s.policy.Sanitize(fragment)
}
