//
//  Copyright © Manetu Inc. All rights reserved.
//

package serve

import (
	"context"
	"os"
	"os/signal"

	"github.com/manetu/ruleengine/cmd/mre/common"
	"github.com/manetu/ruleengine/internal/logging"
	"github.com/manetu/ruleengine/pkg/decisionpoint/generic"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("ruleengine")

const agent string = "serve"

// Execute runs the serve command, starting a decision point server on the
// configured port. It gracefully shuts down on interrupt signals.
func Execute(ctx context.Context, cmd *cli.Command) error {
	port := cmd.Int("port")

	pe, err := common.NewCliPolicyEngine(cmd, os.Stdout)
	if err != nil {
		return err
	}

	server, err := generic.CreateServer(pe, int(port))
	if err != nil {
		return err
	}

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info(agent, "shutdown", "Shutting down server...")

	err = server.Stop(ctx)
	if err != nil {
		return err
	}

	logger.Info(agent, "shutdown", "Server exited gracefully.")
	return nil
}
