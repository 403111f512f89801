// Package llm provides the language model capabilities behind purchase
// enrichment and advice generation. It supports OpenAI, Groq, Anthropic,
// Gemini and the Claude Code CLI, with features like retry logic, rate
// limiting, and response caching.
package llm
