// Package draft implements copy-on-write drafts over immutable value graphs.
//
// A caller hands Produce a base state and a recipe. The recipe receives a
// Draft, a mutable-looking handle over the base, and edits it with ordinary
// reads and writes. When the recipe returns, the engine computes the next
// state: every subtree the recipe never touched is shared by identity with
// the base, and only the containers on a path to a change are copied.
//
// ARCHITECTURE:
//
// Scopes:
// Each transaction owns a Scope. Scopes nest through explicit parent links on
// the Engine, so a recipe may start an inner transaction over one of its own
// drafts. A scope owns an arena of draft nodes addressed by handle. Child
// drafts are created lazily on first read and cached per (parent, key).
// When a transaction finishes, for any reason, its scope is revoked and every
// draft it issued rejects further use.
//
// Change detection:
// DetectEager marks a node and its ancestors as changed on the first real
// write. DetectSweep defers structural changes (added or removed keys, length
// changes) to a reverse sweep over the arena right before finalization.
//
// Finalization:
// Modified nodes are finalized bottom-up. Their copies have child drafts
// replaced by finished values, are frozen when AutoFreeze is on, and emit
// patches when a listener was registered. Unmodified nodes resolve to their
// base value by identity.
//
// Patches:
// Forward and inverse patches use JSON-Patch-like ops (add, remove, replace)
// with array paths. ApplyPatches replays them on a base value or a live draft.
//
// An Engine is not safe for concurrent use. Separate engines are independent.
package draft
