package model

// BuildKey identifies a unit of deduplicated build work. Two targets sharing
// the same project and sanitizer compile into the same fuzzer binaries, so
// the build phase runs once per key.
type BuildKey struct {
	Project   string
	Sanitizer string
}

// String returns the canonical textual form of the key.
func (k BuildKey) String() string {
	return k.Project + "/" + k.Sanitizer
}

// BuildKey derives the build deduplication key for this target.
func (t *Target) BuildKey() BuildKey {
	return BuildKey{Project: t.Project, Sanitizer: t.Sanitizer}
}
