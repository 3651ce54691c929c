// Package flowpipe composes an ordered list of processing steps into a single
// callable chain and threads a payload through it.
//
// A step receives the current payload together with a continuation representing
// the rest of the chain. Calling the continuation resumes execution with a
// possibly transformed payload; not calling it short-circuits the remaining
// steps and the step's own return value becomes the pipeline output. The
// pipeline folds its step list right-to-left into one composed function, so
// execution is strictly sequential and a step never runs before every step
// declared ahead of it has completed or short-circuited.
//
// Steps can be plain functions, stateful objects, registered type names or
// named groups; the Resolver normalises all of them eagerly at build time so
// that a bad reference fails during construction, never mid-run. Conditional
// and nested steps provide branching and sub-flows, and a set of specialized
// steps (transform, validation, retry, rate limit, cache, batch) covers the
// common cross-cutting concerns.
//
// Failure recovery lives in the strategy subpackage: an error-handler step
// consults a pluggable strategy which decides between retrying with a delay,
// substituting a fallback value, running a compensation, or propagating the
// failure.
package flowpipe
