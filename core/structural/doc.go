// Package structural performs strict JSON parsing and reports failures as
// location-tagged [ParseError] values. It is deliberately unforgiving: no
// comments, no trailing commas, no single quotes and no trailing data. Every
// leniency lives in the preprocess and rules packages; this package is the
// single arbiter of whether a candidate is structurally valid.
//
// The main entry point is [Parse]. Its error message and position are meant to
// be pasted verbatim into a repair prompt.
package structural
