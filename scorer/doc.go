// Package scorer provides building blocks for topic intent-confidence
// functions. The engine never interprets language itself; it only compares
// the float confidence each topic reports for an inbound message. The
// functions here cover the common cases (keyword and pattern matching,
// constants, combinators), and the openai and anthropic subpackages add
// LLM-backed classification for fuzzier intents.
package scorer
