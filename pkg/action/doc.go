// Package action turns a published topic and payload into final MIDI actions.
//
// The resolver looks up the base actions configured for the topic and merges
// each one with overrides carried in the payload. A payload is an optional
// JSON object:
//
//	{"action_type": "note_on", "ch": 1, "note": 64, "vel": 40, "dur": 200,
//	 "control_num": 7, "value": 90}
//
// Every key is optional. A payload that is not such an object, or that holds
// a value out of range for its field, carries no overrides at all, so a bare
// "ping" still triggers the configured default actions.
package action
