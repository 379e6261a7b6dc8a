//
//  Copyright © Manetu Inc. All rights reserved.
//

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/manetu/ruleengine/cmd/mre/subcommands/check"
	"github.com/manetu/ruleengine/cmd/mre/subcommands/eval"
	"github.com/manetu/ruleengine/cmd/mre/subcommands/format"
	"github.com/manetu/ruleengine/cmd/mre/subcommands/serve"
	"github.com/manetu/ruleengine/cmd/mre/subcommands/test"
	"github.com/manetu/ruleengine/cmd/mre/version"
	"github.com/manetu/ruleengine/internal/logging"
	"github.com/urfave/cli/v3"
)

var logger = logging.GetLogger("mre")

func main() {
	cmd := &cli.Command{
		Name:  "mre",
		Usage: "A CLI application for working with the Manetu RuleEngine",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "trace",
				Aliases: []string{"t"},
				Usage:   "Emit access records to stderr for commands that evaluate rules",
				Value:   logger.IsTraceEnabled(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Validate policy bundle YAML files for syntax errors, selector problems, and rule compilation failures",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Policy bundle YAML file to check (.yml, .yaml). Can be specified multiple times.",
						Required: true,
					},
				},
				Action: check.Execute,
			},
			{
				Name:  "fmt",
				Usage: "Print the canonical form of a rule expression",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "expression",
						Aliases: []string{"e"},
						Usage:   "The rule expression to format",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Load the rule expression from 'FILE', or use '-' for stdin",
					},
				},
				Action: format.Execute,
			},
			{
				Name:  "eval",
				Usage: "Invokes a policy decision for a single request using one or more policy bundles",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Load the request expression from 'FILE', or use '-' for stdin",
					},
					&cli.StringSliceFlag{
						Name:    "bundle",
						Aliases: []string{"b"},
						Usage:   "Load a policy bundle from `FILE`.  Can be specified multiple times.",
					},
				},
				Action: eval.Execute,
			},
			{
				Name:  "test",
				Usage: "Runs a suite of policy decision tests from a YAML file against one or more policy bundles",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Load the test suite from `FILE`",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "bundle",
						Aliases: []string{"b"},
						Usage:   "Load a policy bundle from `FILE`.  Can be specified multiple times.",
					},
					&cli.StringSliceFlag{
						Name:  "test",
						Usage: "Only run tests whose name matches the glob pattern. Can be specified multiple times.",
					},
				},
				Action: test.Execute,
			},
			{
				Name:  "serve",
				Usage: "Creates a decision-point service",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "The TCP port to serve on.",
						Value: 9000,
					},
					&cli.StringSliceFlag{
						Name:    "bundle",
						Aliases: []string{"b"},
						Usage:   "Load a policy bundle from `FILE`.  Can be specified multiple times.",
					},
				},
				Action: serve.Execute,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Println(version.GetVersion())
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
