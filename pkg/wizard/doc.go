// Package wizard implements the client-side state engine for a multi-step
// guided flow: an ordered step registry, accumulated session state, and a
// navigation controller that validates, persists, and advances
//
// Persistence is abstracted behind the Gateway interface so the same engine
// drives any backend; pkg/client provides the HTTP implementation
package wizard
