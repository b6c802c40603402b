// Package provider defines the capability interface for chat-completion
// model backends and the typed-response decoding contract layered on top of
// it. Each adapter (openai, stub) handles its own backend protocol
// internally; callers only see [api.Prompt] values going in and plain
// strings or caller-declared shapes coming out.
//
// Typed completion does not reflect over arbitrary types. Callers declare
// the structure they expect with a [Schema] and decode into their own Go
// type with [CompleteTyped] or [Decode].
package provider
