//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"fmt"
	"io"

	"github.com/manetu/ruleengine/pkg/core"
	"github.com/manetu/ruleengine/pkg/core/accesslog"
	"github.com/manetu/ruleengine/pkg/core/backend/local"
	"github.com/manetu/ruleengine/pkg/core/options"
	"github.com/manetu/ruleengine/pkg/policydomain/registry"
	"github.com/urfave/cli/v3"
)

// NewCliPolicyEngine creates a new PolicyEngine instance configured from CLI command flags.
// It loads the bundles named by --bundle into a registry, serves them through the local
// backend, and writes access records to the provided writer.
func NewCliPolicyEngine(cmd *cli.Command, accessLog io.Writer) (core.PolicyEngine, error) {
	bundles := cmd.StringSlice("bundle")
	if len(bundles) == 0 {
		return nil, fmt.Errorf("at least one bundle must be specified")
	}

	r, err := registry.NewRegistry(bundles)
	if err != nil {
		return nil, err
	}

	return core.NewPolicyEngine(
		options.WithAccessLog(accesslog.NewIoWriterFactory(accessLog)),
		options.WithBackend(local.NewFactory(r)))
}
