// Package openaicompat provides the HTTP completion client for any
// OpenAI-compatible Chat Completions endpoint. It handles request
// construction, the single POST round trip, response decoding, reduction of
// the decoded response to a flat answer string, and error mapping.
//
// Provider adapters (openai) wrap the Client from this package and apply
// their own failure policy, logging, and instrumentation around it.
package openaicompat
