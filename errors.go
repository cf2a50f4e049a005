package danton

import "errors"

// Sentinel errors for the four error kinds of spec.md §7. Configuration
// and I/O errors abort a run; engine-failure errors are reported upward
// in library use (the CLI driver turns them into a diagnostic line and
// a non-zero exit); sampling fizzles are never surfaced as errors at
// all — they are absorbed without a log line.
var (
	// ErrSamplerRange is returned by Sampler.Update when a range is
	// out of the bounds §4.C specifies.
	ErrSamplerRange = errors.New("danton: sampler range out of bounds")

	// ErrStaleSampler is returned at run time when a sampler field was
	// mutated after Update without a matching re-Update.
	ErrStaleSampler = errors.New("danton: sampler hash is stale")

	// ErrNoSampler is returned when a Context is run without a sampler
	// attached.
	ErrNoSampler = errors.New("danton: context has no sampler")

	// ErrFlagCombination is returned for mutually inconsistent mode
	// flags (e.g. grammage mode combined with flux mode) or a bad
	// positional PDG code on the command line.
	ErrFlagCombination = errors.New("danton: inconsistent mode flags")

	// ErrIO wraps failures opening the output sink, reading the
	// process configuration file, or reading the OS entropy pool.
	ErrIO = errors.New("danton: I/O failure")

	// ErrEngine wraps a failure reported by one of the three physics
	// engines (cross-section lookup, transport abort, decay failure).
	ErrEngine = errors.New("danton: engine failure")

	// ErrInvariant marks a dropped track: weight went negative, or a
	// NaN appeared in a dynamic field.
	ErrInvariant = errors.New("danton: invariant violation")

	// ErrRejectedPrimary is returned internally by backward transport
	// when a backward chain is rejected: the reconstructed primary kind
	// doesn't match the sampler's requested pid0 (spec.md §4.F
	// "Termination"), the recursion backstop is hit, or a step along the
	// chain (zero τ momentum, upper energy cut, exit, vertex sampling)
	// fails.
	ErrRejectedPrimary = errors.New("danton: backward primary kind mismatch")
)
