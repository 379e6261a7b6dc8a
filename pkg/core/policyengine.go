//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package core provides the primary interface for the Manetu Rule Engine,
// an attribute-based access control system that evaluates rule expressions
// over request attributes to produce authorization decisions.
//
// Each incoming request carries an action identity (resource/action names)
// plus attribute maps for the subject, action, and resource. The engine
// selects the policies whose action pattern governs the identity and grants
// when any policy's rule evaluates true. Each decision can optionally be
// logged to an access log for audit trail purposes.
//
// # Quick Start
//
// Create a rule engine with default options (stdout access log, empty
// in-memory backend):
//
//	pe, err := core.NewPolicyEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Make an authorization decision:
//
//	allowed, err := pe.Authorize(ctx, `{
//	    "action_id": {"resource": "echoer1", "action": "handle_message"},
//	    "action":  {"method": "get"},
//	    "subject": {"name": "Ivan", "groups": ["people"]}
//	}`)
//
// # Configuration
//
// The engine supports various configuration options via functional options:
//
//	pe, err := core.NewPolicyEngine(
//	    options.WithBackend(local.NewFactory(registry)),
//	    options.WithAccessLog(accesslog.NewStdoutFactory()),
//	)
//
// # Probe Mode
//
// For UI capabilities discovery without impacting audit logs, use probe mode:
//
//	allowed, err := pe.Authorize(ctx, request, options.SetProbeMode(true))
//
// See the [options] package for all available configuration options.
package core

import (
	"context"

	"github.com/manetu/ruleengine/internal/core"
	"github.com/manetu/ruleengine/internal/core/backend/mock"
	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/core/accesslog"
	"github.com/manetu/ruleengine/pkg/core/backend"
	"github.com/manetu/ruleengine/pkg/core/backend/local"
	"github.com/manetu/ruleengine/pkg/core/backend/memory"
	"github.com/manetu/ruleengine/pkg/core/config"
	"github.com/manetu/ruleengine/pkg/core/options"
	"github.com/manetu/ruleengine/pkg/core/types"
	"github.com/manetu/ruleengine/pkg/policydomain/registry"
	"github.com/pkg/errors"
)

var logger = logging.GetLogger("ruleengine")
var agent = "ruleengine"

// PolicyEngine is the primary interface for making authorization decisions.
//
// PolicyEngine evaluates access control requests by matching the request's
// action identity against policy action patterns and evaluating the rules
// of the governing policies. The engine supports pluggable backends for
// policy storage and access logs for audit trails.
//
// Implementations of PolicyEngine are safe for concurrent use by multiple
// goroutines.
type PolicyEngine interface {
	// Authorize evaluates an authorization request and returns the decision.
	//
	// The request parameter accepts a JSON string, a map[string]interface{},
	// or a typed rule.Request. See the [types] package for details.
	//
	// Returns true if the request is authorized, false otherwise.
	// Returns an error if the request is malformed or evaluation fails.
	Authorize(ctx context.Context, request types.AnyRequest, authzOptions ...options.AuthzOptionsFunc) (bool, error)

	// GetBackend returns the underlying backend service used for policy retrieval.
	//
	// This is useful for advanced use cases where direct access to policy data
	// is needed, such as debugging or policy introspection.
	GetBackend() backend.Service
}

// PolicyEngineImpl is the default implementation of the [PolicyEngine] interface.
//
// PolicyEngineImpl wraps the internal rule engine implementation and can be
// embedded or wrapped by applications that need to extend or customize the
// engine's behavior, such as adding context management or middleware.
//
// Use [NewPolicyEngine] to create a properly initialized instance.
type PolicyEngineImpl struct {
	instance core.PolicyEngine
}

// NewPolicyEngine creates and initializes a new [PolicyEngine] instance.
//
// By default, the engine uses a stdout access log and an empty in-memory
// backend, which denies everything. Use functional options to configure a
// production backend and access log:
//
//	pe, err := core.NewPolicyEngine(
//	    options.WithBackend(local.NewFactory(registry)),
//	    options.WithAccessLog(accesslog.NewIoWriterFactory(auditFile)),
//	)
//
// When mock.enabled is set, the engine substitutes the config-driven mock
// backend and ignores any backend supplied via options.
//
// NewPolicyEngine loads configuration from environment variables and config
// files before initializing the engine. See the [config] package for details.
//
// Returns an error if configuration loading fails or if the backend cannot
// be initialized.
func NewPolicyEngine(engineOptions ...options.EngineOptionsFunc) (PolicyEngine, error) {
	err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	opts := &options.EngineOptions{
		AccessLogFactory: accesslog.NewStdoutFactory(),
		BackendFactory:   memory.NewFactory(),
	}
	if config.VConfig.GetBool(config.MockEnabled) {
		opts.BackendFactory = mock.NewFactory()
	}
	for _, o := range engineOptions {
		o(opts)
	}

	instance, err := core.NewPolicyEngine(opts)
	if err != nil {
		return nil, err
	}

	return &PolicyEngineImpl{
		instance: *instance,
	}, nil
}

// NewLocalPolicyEngine creates and initializes a new [PolicyEngine] instance
// from local policy bundle files.
//
// Each bundlePath should be a file containing a policy bundle YAML document.
// Bundles are loaded in the order provided, with later bundles taking
// precedence for name collisions.
//
// Other defaults are inherited from [NewPolicyEngine].
//
// Use functional options to configure a production access log:
//
//	pe, err := core.NewLocalPolicyEngine(bundles,
//	    options.WithAccessLog(accesslog.NewIoWriterFactory(auditFile)),
//	)
//
// Returns an error if configuration loading fails, a bundle does not
// validate, or the backend cannot be initialized.
func NewLocalPolicyEngine(bundlePaths []string, engineOptions ...options.EngineOptionsFunc) (PolicyEngine, error) {
	err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "error loading config")
	}

	r, err := registry.NewRegistry(bundlePaths)
	if err != nil {
		return nil, err
	}

	engineOptions = append(engineOptions, options.WithBackend(local.NewFactory(r)))
	return NewPolicyEngine(engineOptions...)
}

// Authorize evaluates an authorization request and returns the decision.
//
// The request parameter can be provided as either:
//   - A JSON string containing the request structure
//   - A map[string]interface{} with the request fields already unmarshalled
//   - A typed rule.Request or *rule.Request
//
// The request must carry an action_id identifying the attempted operation;
// attribute maps for subject, action, and resource are optional. See the
// [types] package for the expected structure.
//
// Authorization options can modify the evaluation behavior:
//
//	// Enable probe mode to skip access logging
//	allowed, err := pe.Authorize(ctx, request, options.SetProbeMode(true))
//
// The authorization decision and any evaluation errors are logged to the
// configured access log (unless probe mode is enabled).
func (pe *PolicyEngineImpl) Authorize(ctx context.Context, request types.AnyRequest, authzOptions ...options.AuthzOptionsFunc) (bool, error) {
	logger.Debug(agent, "Authorize", "Enter")
	defer logger.Debug(agent, "Authorize", "Exit")

	opts := &options.AuthzOptions{Probe: false}
	for _, o := range authzOptions {
		o(opts)
	}

	input, err := types.UnmarshalRequest(request)
	if err != nil {
		return false, err
	}

	authz, perr := pe.instance.Authorize(ctx, input, opts)
	logger.Debugf(agent, "Authorize", "returned from authorize(): %t", authz)

	if perr != nil {
		return authz, perr
	}
	return authz, nil
}

// GetBackend returns the backend service used by this policy engine.
//
// The backend service provides access to the stored policies. This method is
// primarily intended for advanced use cases such as policy introspection or
// debugging.
func (pe *PolicyEngineImpl) GetBackend() backend.Service {
	return pe.instance.GetBackend()
}
