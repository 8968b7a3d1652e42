// Package gemini implements [completion.Service] with the Google Gen AI SDK
// (google.golang.org/genai) against the Gemini Developer API.
//
// [New] reads GEMINI_API_KEY (falling back to GOOGLE_API_KEY) and an optional
// GEMINI_API_BASE_URL. Replies are requested as application/json so the
// model is steered towards emitting the payload alone.
package gemini
