// Package sideeffect defines the optional collaborator boundaries invoked
// around a ringing session: device haptics on fire and a best-effort payment
// on snooze. Both are fire-and-forget by policy; their failures are logged
// and never influence alarm or session state.
package sideeffect
