// Package model defines the validated, immutable representation of fuzz
// targets loaded from the orchestrator configuration document.
package model
