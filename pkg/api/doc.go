// Package api defines the core data types for the wizard engine
//
// This package contains all the shared types used across the engine and its
// clients, including step definitions, wizard state, lifecycle events, and
// HTTP messages
package api
