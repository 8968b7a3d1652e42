// Package parse converts values produced by the loader into Go types.
//
// Language models often return JSON that is structurally valid but shaped a
// little wrong for the caller: numbers quoted as strings, or values wrapped in
// schema-style {"type": ..., "value": ...} envelopes. [Into] tolerates both
// before giving up with a descriptive error.
package parse
