package crawler

// slugSet tracks product slugs accepted during one crawl run, so a slug
// seen in an earlier category is never reprocessed. It is owned by a single
// Run invocation and never shared.
type slugSet struct {
	seen map[string]struct{}
}

func newSlugSet() *slugSet {
	return &slugSet{seen: make(map[string]struct{})}
}

// Seen returns true if the slug has been accepted before.
func (s *slugSet) Seen(slug string) bool {
	_, ok := s.seen[slug]
	return ok
}

// Mark records a slug as accepted.
func (s *slugSet) Mark(slug string) {
	s.seen[slug] = struct{}{}
}

// Count returns the number of unique slugs seen.
func (s *slugSet) Count() int {
	return len(s.seen)
}
