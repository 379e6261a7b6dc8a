//
//  Copyright © Manetu Inc. All rights reserved.
//

package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func buildFormatCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name: "mre",
		Commands: []*cli.Command{
			{
				Name: "fmt",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "expression", Aliases: []string{"e"}},
					&cli.StringFlag{Name: "input", Aliases: []string{"i"}},
				},
				Action: action,
			},
		},
	}
}

func TestFormatRule(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "canonical spelling for operator aliases",
			text:     `(= subject.name "Ivan")`,
			expected: `(eq subject.name "Ivan")`,
		},
		{
			name:     "whitespace collapses",
			text:     "(and   (neq action.method \"delete\")\n\t(in subject.group [\"admins\"  \"operators\"]))",
			expected: `(and (neq action.method "delete") (member subject.group ["admins" "operators"]))`,
		},
		{
			name:     "bare literal",
			text:     "  true ",
			expected: "true",
		},
		{
			name:     "nested conditionals",
			text:     `(if (!= resource.tier "gold") false (or true false))`,
			expected: `(if (neq resource.tier "gold") false (or true false))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, err := formatRule(tt.text)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, canonical)
		})
	}
}

func TestFormatRule_ParseError(t *testing.T) {
	_, err := formatRule(`(eq subject.name`)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestFormatRule_ValidationError(t *testing.T) {
	_, err := formatRule(`(frobnicate subject.name "Ivan")`)
	assert.Error(t, err)
}

func TestExecute_Expression(t *testing.T) {
	cmd := buildFormatCommand(Execute)
	err := cmd.Run(context.Background(), []string{"mre", "fmt", "-e", `(= subject.name "Ivan")`})
	assert.NoError(t, err)
}

func TestExecute_BadExpression(t *testing.T) {
	cmd := buildFormatCommand(Execute)
	err := cmd.Run(context.Background(), []string{"mre", "fmt", "-e", `(eq subject.name`})
	assert.Error(t, err)
}
