// Package harness runs draft scenarios written in YAML.
//
// A scenario names a base document, a list of edits to apply inside one
// transaction, and the expected outcome. The harness is how the engine's
// testable properties are pinned down as data: every passing scenario is
// also replayed through its own patches to check that forward patches turn
// the base into the result and inverse patches turn it back.
//
// # Scenario Format
//
//	name: push_two
//	description: "Appending grows the sequence and emits adds"
//	detection: eager        # or sweep; defaults to eager
//	auto_freeze: true       # defaults to true
//	base: { items: [1] }
//	steps:
//	  - op: push
//	    path: [items]
//	    values: [2, 3]
//	expect:
//	  result: { items: [1, 2, 3] }
//	  patches:
//	    - { op: add, path: [items, 1], value: 2 }
//	    - { op: add, path: [items, 2], value: 3 }
//	  inverse:
//	    - { op: replace, path: [items, length], value: 1 }
//
// # Step Ops
//
//   - set, delete: path ends with the key to write or remove
//   - push, pop, insert, remove, splice, set_length: path names the sequence
//   - replace_root: the transaction returns value instead of the draft
//   - nothing: the transaction returns the Nothing marker
//
// # Expectations
//
//   - result: deep-equal final state
//   - removed: the transaction produced no state (Nothing)
//   - unchanged: the result is the base itself
//   - shared: paths whose values are identical in base and result
//   - patches, inverse: exact patch lists
//   - error: an error code or class the transaction must fail with
//
// # Deterministic Output
//
// Step traces are numbered with testutil.DeterministicClock, and snapshots
// are serialized as canonical JSON so golden files compare byte for byte.
package harness
