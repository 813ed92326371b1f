package samlfed

import (
	"github.com/philiph/saml-fed/internal/adapters/driven/registry"
	"github.com/philiph/saml-fed/internal/core/domain"
	"github.com/philiph/saml-fed/internal/core/logout"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// Re-export logout orchestration types
type LogoutOrchestrator = logout.Orchestrator
type LogoutSummary = logout.Summary
type LogoutReport = logout.Report
type Association = domain.Association
type AssociationRegistry = ports.AssociationRegistry
type LogoutStatus = domain.LogoutStatus

// Re-export logout status constants
const (
	LogoutOnHold     = domain.LogoutOnHold
	LogoutInProgress = domain.LogoutInProgress
	LogoutCompleted  = domain.LogoutCompleted
	LogoutFailed     = domain.LogoutFailed
)

// Re-export association registry implementations
type MemoryRegistry = registry.MemoryRegistry
type SQLiteRegistry = registry.SQLiteRegistry

var (
	NewLogoutOrchestrator = logout.New
	NewMemoryRegistry     = registry.NewMemoryRegistry
	NewSQLiteRegistry     = registry.NewSQLiteRegistry
)
