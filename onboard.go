// Package onboard identifies the wizard engine service
package onboard

const (
	// Name is the service name reported in logs and health responses
	Name = "onboard"

	// Version is the service version reported in logs and health responses
	Version = "0.3.0"
)
