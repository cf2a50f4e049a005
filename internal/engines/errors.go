package engines

import "errors"

// errExitBeforeVertex is returned by SampleVertex when the backward
// walk leaves the medium before an ancestor vertex is accepted.
var errExitBeforeVertex = errors.New("engines: backward walk exited before a vertex was sampled")

// ErrDecayFailed is returned by DecayEngine.Decay on a sampling
// failure; component E/F retry up to 20 times before treating the
// event as a silent fizzle (spec.md §4.E, §7, §9).
var ErrDecayFailed = errors.New("engines: decay sampling failed")

// ErrUndecayRejected is returned by DecayEngine.Undecay when the
// backward-sampled parent is not a tau, the rejection spec.md §4.F
// requires at the un-decay step.
var ErrUndecayRejected = errors.New("engines: undecay did not yield a tau parent")
