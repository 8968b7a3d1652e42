// Package ollama implements [completion.Service] against a local Ollama
// server's /api/generate endpoint. The server address comes from OLLAMA_HOST.
package ollama
