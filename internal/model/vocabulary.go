package model

import "strings"

// LabelSet is an ordered set of labels compared without regard to case.
// The first spelling seen for a label is canonical. The zero value is empty.
type LabelSet struct {
	labels []string
}

// NewLabelSet builds a set from labels, keeping the first spelling of duplicates.
func NewLabelSet(labels ...string) LabelSet {
	var set LabelSet
	for _, label := range labels {
		_, set = MergeLabel(set, label)
	}
	return set
}

// Lookup returns the canonical spelling of label if the set holds it.
func (s LabelSet) Lookup(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, existing := range s.labels {
		if strings.EqualFold(existing, label) {
			return existing, true
		}
	}
	return "", false
}

// Labels returns a copy of the labels in insertion order.
func (s LabelSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Len returns the number of labels.
func (s LabelSet) Len() int {
	return len(s.labels)
}

// MergeLabel resolves candidate against set. A candidate matching an existing
// label returns that label's canonical spelling and the set unchanged;
// otherwise the trimmed candidate is returned along with a new set that
// includes it. set itself is never modified. Blank candidates are not added.
func MergeLabel(set LabelSet, candidate string) (string, LabelSet) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", set
	}
	if canonical, ok := set.Lookup(candidate); ok {
		return canonical, set
	}

	labels := make([]string, len(set.labels), len(set.labels)+1)
	copy(labels, set.labels)
	return candidate, LabelSet{labels: append(labels, candidate)}
}

// Vocabulary is the run-scoped set of brands and categories discovered so far.
// Version increases every time either set grows.
type Vocabulary struct {
	Brands     LabelSet
	Categories LabelSet
	Version    int
}

// NewVocabulary seeds a vocabulary with already known labels.
func NewVocabulary(brands, categories []string) *Vocabulary {
	return &Vocabulary{
		Brands:     NewLabelSet(brands...),
		Categories: NewLabelSet(categories...),
	}
}

// MergeBrand returns the canonical spelling for brand, adding it if new.
func (v *Vocabulary) MergeBrand(brand string) string {
	canonical, updated := MergeLabel(v.Brands, brand)
	if updated.Len() != v.Brands.Len() {
		v.Brands = updated
		v.Version++
	}
	return canonical
}

// MergeCategory returns the canonical spelling for category, adding it if new.
func (v *Vocabulary) MergeCategory(category string) string {
	canonical, updated := MergeLabel(v.Categories, category)
	if updated.Len() != v.Categories.Len() {
		v.Categories = updated
		v.Version++
	}
	return canonical
}

// Snapshot returns copies of the current brand and category labels.
func (v *Vocabulary) Snapshot() (brands, categories []string) {
	return v.Brands.Labels(), v.Categories.Labels()
}
