// Package value provides the closed value model shared by every other package.
//
// A value graph is built from scalars (Null, Bool, Int, Float, String),
// containers (*Array, *Object) and opaque foreign values (*Opaque). The set
// of kinds is closed and decided once per value by Classify, so callers never
// need duck-typed "is this a plain object" checks.
//
// Key design constraints:
//   - Containers are reference values: two containers are Identical only if
//     they are the same pointer. Structural sharing relies on this.
//   - Frozen containers reject every mutator with ErrFrozen.
//   - Object keys are always iterated in RFC 8785 order (UTF-16 code units),
//     so anything derived from a value graph is deterministic.
//   - value imports nothing internal.
package value
