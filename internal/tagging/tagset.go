package tagging

import "slices"

// TagSet is an insertion-ordered set of tags.
type TagSet struct {
	items []string
	seen  map[string]struct{}
}

// NewTagSet returns an empty set.
func NewTagSet() *TagSet {
	return &TagSet{items: []string{}, seen: map[string]struct{}{}}
}

// Add appends tags not already present. Empty tags are ignored.
func (s *TagSet) Add(tags ...string) {
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := s.seen[t]; ok {
			continue
		}
		s.seen[t] = struct{}{}
		s.items = append(s.items, t)
	}
}

// Contains reports whether tag is present.
func (s *TagSet) Contains(tag string) bool {
	_, ok := s.seen[tag]
	return ok
}

// Len returns the number of tags.
func (s *TagSet) Len() int { return len(s.items) }

// Items returns the tags in insertion order. The result is never nil.
func (s *TagSet) Items() []string {
	return slices.Clone(s.items)
}
