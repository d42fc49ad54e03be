//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// synthesisPackages produce record content and must draw every random value
// from the injected randomness.Source so a seed replays a run exactly.
const synthesisPackages = `internal/(weather|astronomy|detection|enrichment|tagging|rating|temporal|record)$`

// GlobalRand flags the package-level math/rand generators outside the
// randomness package.
//
// Old pattern:
//
//	n := rand.IntN(10)
//
// New pattern:
//
//	n := src.IntRange(0, 9)
func GlobalRand(m dsl.Matcher) {
	m.Import("math/rand/v2")

	m.Match(
		`rand.IntN($*_)`,
		`rand.Int64N($*_)`,
		`rand.Uint64()`,
		`rand.Float64()`,
		`rand.Shuffle($*_)`,
		`rand.Perm($*_)`,
		`rand.N($*_)`,
	).
		Where(!m.File().PkgPath.Matches(`internal/randomness$`)).
		Report("draw from the injected *randomness.Source instead of the global generator")
}

// WallClockInSynthesis flags reads of the wall clock while building record
// content. Timestamps derive from the reference time.
func WallClockInSynthesis(m dsl.Matcher) {
	m.Match(`time.Now()`, `time.Since($_)`).
		Where(m.File().PkgPath.Matches(synthesisPackages) && !m.File().Name.Matches(`_test\.go$`) &&
			!m.File().Name.Matches(`^generator\.go$`)).
		Report("record content must derive times from the reference time, not the wall clock")
}

// UnseededUUID flags random UUIDs drawn from crypto/rand inside synthesis
// packages, which would make output differ between runs with the same seed.
//
// Old pattern:
//
//	id := uuid.NewString()
//
// New pattern:
//
//	id := src.UUID()
func UnseededUUID(m dsl.Matcher) {
	m.Import("github.com/google/uuid")

	m.Match(`uuid.New()`, `uuid.NewString()`, `uuid.NewRandom()`).
		Where(m.File().PkgPath.Matches(synthesisPackages)).
		Report("derive ids from the seeded stream with uuid.NewRandomFromReader")
}
