// Package anthropic implements [completion.Service] on top of Anthropic's
// Messages API. [New] reads ANTHROPIC_API_KEY and ANTHROPIC_API_BASE_URL from
// the environment.
package anthropic
