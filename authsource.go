package samlfed

import (
	"github.com/philiph/saml-fed/internal/core/authsource"
	"github.com/philiph/saml-fed/internal/core/ports"
)

// Re-export authentication source types
type SPAuthSource = authsource.SPAuthSource
type SPConfig = authsource.Config
type Response = authsource.Response
type ResponseKind = authsource.ResponseKind

// Re-export message builder port types
type MessageBuilder = ports.MessageBuilder
type OutboundMessage = ports.OutboundMessage
type AuthnRequestOptions = ports.AuthnRequestOptions
type LogoutRequestOptions = ports.LogoutRequestOptions

// Re-export response kind constants
const (
	ResponseSendToIdP = authsource.ResponseSendToIdP
	ResponseDiscovery = authsource.ResponseDiscovery
	ResponseRedirect  = authsource.ResponseRedirect
	ResponseSuspended = authsource.ResponseSuspended
	ResponseCompleted = authsource.ResponseCompleted
	ResponseSatisfied = authsource.ResponseSatisfied
)

var NewSPAuthSource = authsource.New
