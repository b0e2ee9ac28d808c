/*
Package session owns the live conversation states of a process.

A Manager hands out exactly one *domain.ConversationState per session key and
serializes turns on that key with a reference-counted mutex, optionally backed by a
distributed lock so that replicas sharing a store never process the same session at once.
States are written through to an optional ports.StateStore after every turn.
*/
package session
