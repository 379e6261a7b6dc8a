//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package local provides a backend implementation that loads policies
// from local YAML policy bundles via a [registry.Registry].
//
// The local backend is the standard backend for applications that
// manage their policies as configuration files, either bundled with
// the application or loaded from a filesystem path.
//
// # Usage
//
//	// Load policy bundles from local files
//	registry, err := registry.NewRegistry([]string{
//	    "./policies/base.yaml",
//	    "./policies/application.yaml",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create policy engine with local backend
//	pe, err := core.NewPolicyEngine(
//	    options.WithBackend(local.NewFactory(registry)),
//	)
//
// # Policy Compilation
//
// All rules are parsed and validated during registry construction, before
// the backend exists. [Factory.NewBackend] installs the compiled policies
// into an in-memory table, so authorization decisions at runtime carry no
// compilation overhead.
package local

import (
	"context"

	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/core/backend"
	"github.com/manetu/ruleengine/pkg/core/backend/memory"
	"github.com/manetu/ruleengine/pkg/policydomain/registry"
)

var logger = logging.GetLogger("ruleengine.backend.local")
var actor = "backend.local"

// Factory creates backend instances from a [registry.Registry].
type Factory struct {
	reg *registry.Registry
}

// NewFactory creates a [backend.Factory] for the local backend.
//
// The registry must be fully loaded and validated before calling NewFactory.
// Use [registry.NewRegistry] to create the registry from policy bundle paths.
func NewFactory(reg *registry.Registry) backend.Factory {
	return &Factory{reg: reg}
}

// NewBackend creates a [backend.Service] seeded with the registry's policies.
//
// The policies are installed into a [memory.Backend] in bundle declaration
// order, preserving the first-match precedence established by the bundles.
func (f *Factory) NewBackend() (backend.Service, error) {
	policies := f.reg.Export()

	b := memory.New()
	for _, p := range policies {
		if err := b.SetPolicy(context.Background(), p); err != nil {
			return nil, err
		}
	}

	logger.Infof(actor, "NewBackend", "serving %d policies from %d bundles", len(policies), len(f.reg.GetBundles()))
	return b, nil
}
