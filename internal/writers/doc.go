// Package writers turns a finished run into serialized outputs.
//
// Design:
//   • Writers own all presentation knowledge (TSV/JSON/JSONL).
//   • Engine stays domain-only; appcore stays orchestration-only.
//   • JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
