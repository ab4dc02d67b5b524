// Package cli constructs the unpushed command-line interface, wiring the
// Cobra root command, configuration loader, and structured logging primitives
// around the repository scan service.
package cli
