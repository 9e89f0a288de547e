// Package engine runs the consensus voting pass: join, per-cell votes,
// cluster aggregation and final labels. It never imports app, writers,
// cli or table; keep it domain-only.
//
// External outputs must not depend on the internal shape here; use pkg/api
// for stable wire types (JSON/JSONL v1).
package engine
