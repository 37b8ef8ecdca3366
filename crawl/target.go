package crawl

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/strokepipe/core"
)

// DefaultURLTemplate is the MOE stroke-order dictionary view page.
const DefaultURLTemplate = "https://stroke-order.learningweb.moe.edu.tw/dictView.jsp?ID={id}&la={lang}"

// Target builds the page URL for a character id. {id} is replaced by the
// decimal id and {lang} by the language-variant selector.
type Target struct {
	Template        string
	LanguageVariant int
}

// Validate checks that the template yields an absolute http(s) URL and
// references {id}.
func (t Target) Validate() error {
	if !strings.Contains(t.Template, "{id}") {
		return fmt.Errorf("url template %q has no {id} placeholder", t.Template)
	}
	parsed, err := url.Parse(t.URL(0))
	if err != nil {
		return fmt.Errorf("url template %q: %w", t.Template, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url template %q must use http or https", t.Template)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url template %q has no host", t.Template)
	}
	return nil
}

// URL returns the page URL for id.
func (t Target) URL(id core.CharacterID) string {
	return strings.NewReplacer(
		"{id}", id.Decimal(),
		"{lang}", strconv.Itoa(t.LanguageVariant),
	).Replace(t.Template)
}
