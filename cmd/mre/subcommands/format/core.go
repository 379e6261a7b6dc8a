//
//  Copyright © Manetu Inc. All rights reserved.
//

package format

import (
	"context"
	"fmt"

	"github.com/manetu/ruleengine/cmd/mre/common"
	"github.com/manetu/ruleengine/pkg/rule"
	"github.com/urfave/cli/v3"
)

// Execute runs the fmt command, printing the canonical form of a rule
// expression supplied via --expression or --input.
func Execute(ctx context.Context, cmd *cli.Command) error {
	text := cmd.String("expression")
	if text == "" {
		text = common.GetInputExpression(cmd.String("input"))
	}

	canonical, err := formatRule(text)
	if err != nil {
		return err
	}

	fmt.Println(canonical)
	return nil
}

// formatRule compiles the rule text and renders it canonically. Compilation
// errors surface unchanged so the caller sees the structured parse or
// validation failure.
func formatRule(text string) (string, error) {
	compiled, err := rule.Compile(text)
	if err != nil {
		return "", err
	}

	return rule.Format(compiled), nil
}
