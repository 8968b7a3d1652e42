// Package rules implements the deterministic, model-free corrections applied
// to a candidate before any completion service is consulted.
//
// Each [Rule] is a pure, idempotent string transformation that understands
// string literals well enough not to touch their contents. [Default] returns
// the fixed sequence used by the loader; [Repairer] runs a sequence and can
// report which rules changed the text.
package rules
