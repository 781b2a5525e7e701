// Package security derives the engine's security posture report from its
// raw configuration. The root package exposes the result through
// Engine.SecurityReport; the server logs it at startup.
package security
