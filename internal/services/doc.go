// Package services defines the shared error taxonomy used by pipeline
// components to classify failures for the orchestrator.
package services
