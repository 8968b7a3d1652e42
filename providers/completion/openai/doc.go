// Package openai implements [completion.Service] for OpenAI-compatible chat
// completion APIs.
//
// [New] reads OPENAI_API_KEY and OPENAI_API_BASE_URL from the environment. The
// base URL defaults to Groq, whose small Llama models are a good fit for the
// "fast" tier; point it at api.openai.com, OpenRouter or a local gateway with
// [Provider.WithBaseURL]. Tier names are mapped to model identifiers with
// [Provider.WithModel].
package openai
