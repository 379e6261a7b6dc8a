//
//  Copyright © Manetu Inc. All rights reserved.
//

package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/manetu/ruleengine/cmd/mre/common"
	"github.com/urfave/cli/v3"
)

type decision struct {
	Allow bool `json:"allow"`
}

// Execute runs a single policy decision against the loaded bundles and
// prints the outcome as JSON.
//
// The access record for the decision is suppressed unless --trace is set,
// in which case it is written to stderr.
func Execute(ctx context.Context, cmd *cli.Command) error {
	accessLogWriter := io.Discard
	if cmd.Root().Bool("trace") {
		accessLogWriter = os.Stderr
	}

	pe, err := common.NewCliPolicyEngine(cmd, accessLogWriter)
	if err != nil {
		return err
	}

	allow, err := pe.Authorize(ctx, common.GetInputExpression(cmd.String("input")))
	if err != nil {
		return err
	}

	out, err := json.Marshal(decision{Allow: allow})
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
