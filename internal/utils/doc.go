// Package utils provides shared low-level helpers for the completion backends:
// a synchronous JSON POST helper that classifies failures into completion
// sentinels, header options and string truncation for log output.
package utils
