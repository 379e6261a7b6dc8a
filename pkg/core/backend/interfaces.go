//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package backend defines the interfaces for policy storage backends.
//
// A backend is responsible for storing and retrieving the compiled policies
// the rule engine consults for authorization decisions. The engine asks the
// backend for the policies applicable to a request's action identity and
// evaluates them in order.
//
// # Built-in Backends
//
// The following backend implementations are available:
//   - [memory]: An in-memory policy store, seedable and mutable at runtime
//   - [local]: Loads policies from local YAML files via a [registry.Registry]
//   - Mock backend (internal): Serves policies from configuration, useful for testing
//
// # Implementing a Custom Backend
//
// To implement a custom backend (e.g., for a database or remote service):
//
//  1. Implement the [Factory] interface to create backend instances
//  2. Implement the [Service] interface to provide policy data
//  3. Use the backend with [options.WithBackend] when creating the engine
//
// Example:
//
//	type MyFactory struct { /* ... */ }
//
//	func (f *MyFactory) NewBackend() (backend.Service, error) {
//	    return &MyBackend{ /* ... */ }, nil
//	}
//
//	// Use with rule engine
//	pe, _ := core.NewPolicyEngine(options.WithBackend(&MyFactory{}))
//
// # MRN Format
//
// All methods that accept MRN (Manetu Resource Name) parameters expect
// identifiers in the format: mrn:<domain>:<type>:<path>
// For example: mrn:example:policy:echoer1
package backend

import (
	"context"

	"github.com/manetu/ruleengine/pkg/common"
	"github.com/manetu/ruleengine/pkg/core/model"
	"github.com/manetu/ruleengine/pkg/rule"
)

// Factory creates backend [Service] instances.
//
// The factory pattern separates early initialization (configuration defaults,
// resource allocation) from late initialization (connecting to services,
// compiling rules). The rule engine framework guarantees that configuration
// is fully loaded before [Factory.NewBackend] is called.
//
// Implementations should perform expensive operations (database connections,
// rule compilation) in NewBackend, not during factory construction.
type Factory interface {
	// NewBackend creates a new backend service instance.
	//
	// Returns an error if the backend cannot be initialized (e.g., database
	// connection failure, rule compilation error).
	NewBackend() (Service, error)
}

// Service provides access to compiled policies for authorization decisions.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// # Error Handling
//
// Methods return *[common.PolicyError] instead of error to provide structured
// error information including reason codes suitable for access logging.
// A nil PolicyError indicates success.
type Service interface {
	// GetPolicies returns the policies whose action pattern matches the
	// given action identity, in stable declaration order. An identity no
	// policy governs yields an empty set, not an error.
	GetPolicies(ctx context.Context, id rule.ActionID) (model.PolicySet, *common.PolicyError)

	// GetPolicy retrieves a single policy by its MRN.
	GetPolicy(ctx context.Context, mrn string) (*model.Policy, *common.PolicyError)

	// ListPolicies returns every stored policy in stable declaration order.
	ListPolicies(ctx context.Context) (model.PolicySet, *common.PolicyError)
}

// Store is implemented by backends whose policy set can be mutated at
// runtime. The engine itself requires only [Service]; Store is for
// management surfaces (tests, tooling, provisioning).
type Store interface {
	Service

	// SetPolicy inserts or replaces a policy, keyed by its MRN.
	SetPolicy(ctx context.Context, p *model.Policy) *common.PolicyError

	// DeletePolicy removes a policy by its MRN. Deleting an absent policy
	// returns a NOTFOUND error.
	DeletePolicy(ctx context.Context, mrn string) *common.PolicyError
}
