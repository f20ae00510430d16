package services

import (
	"strings"

	"github.com/jkkn-ai/assist/internal/core/domain"
)

// QueryExpander appends domain synonyms and identity terms to a query.
// Expansion is strictly append-only: the user's literal terms are always
// preserved so expansion can never consume the exact-match signal.
type QueryExpander struct {
	synonyms    map[string][]string
	domainTerms []string
}

// NewQueryExpander creates an expander from the configured table.
// Synonym keys are matched case-insensitively against query terms.
func NewQueryExpander(cfg domain.ExpansionSettings) *QueryExpander {
	synonyms := make(map[string][]string, len(cfg.Synonyms))
	for term, related := range cfg.Synonyms {
		synonyms[strings.ToLower(term)] = related
	}
	return &QueryExpander{
		synonyms:    synonyms,
		domainTerms: cfg.DomainTerms,
	}
}

// Expand returns the query with synonym and domain-identity terms
// appended. Appended terms are deduplicated against terms already
// present; the original query text always comes first, unmodified.
func (e *QueryExpander) Expand(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	present := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		present[term] = true
	}

	var appended []string
	add := func(term string) {
		lower := strings.ToLower(term)
		if lower == "" || present[lower] {
			return
		}
		present[lower] = true
		appended = append(appended, term)
	}

	for _, term := range strings.Fields(strings.ToLower(query)) {
		for _, related := range e.synonyms[term] {
			add(related)
		}
	}
	for _, term := range e.domainTerms {
		add(term)
	}

	if len(appended) == 0 {
		return query
	}
	return query + " " + strings.Join(appended, " ")
}
