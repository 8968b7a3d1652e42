// Package preprocess extracts a plausible JSON substring from text produced by
// language models. Models routinely wrap JSON in markdown fences, prefix it with
// narrative prose or append trailing commentary; this package peels those layers
// off without attempting any syntactic repair.
//
// [Extract] is the main entry point. [HTMLToMarkdown] is an optional first step
// for payloads that arrive as HTML (scraped pages, HTML e-mail bodies).
package preprocess
