// Package samlfed implements the service-provider side of a SAML 2.0
// federation: authentication source orchestration with IdP discovery, an
// attribute processing chain with suspend/resume semantics, stable subject
// identifier generation, and multi-SP logout coordination.
//
// The package follows a hexagonal layout. Domain logic lives in
// internal/core, infrastructure implementations in internal/adapters/driven.
// This root package re-exports the public surface so embedders need a single
// import.
package samlfed
