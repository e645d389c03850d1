// Package subscription tracks which endpoints are subscribed to which
// channels.
//
// A channel exists only while it has at least one subscriber; removing the
// last subscriber deletes it. Subscribing twice is idempotent and
// unsubscribing a non-member is a no-op.
//
// Lookups take a snapshot, so a publish fanning out to Subscribers never
// holds a lock while sending and never observes a half-updated set.
// Operations on different channels do not contend with each other.
package subscription
