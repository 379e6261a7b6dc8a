//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyError(t *testing.T) {
	tests := []struct {
		name     string
		err      *PolicyError
		expected string
	}{
		{
			name:     "not found",
			err:      NewError(ReasonNotFound, "no policies for mrn:echoer1"),
			expected: "no policies for mrn:echoer1(code-NOTFOUND_ERROR)",
		},
		{
			name:     "compilation",
			err:      NewError(ReasonCompilation, "parse error at offset 4"),
			expected: "parse error at offset 4(code-COMPILATION_ERROR)",
		},
		{
			name:     "formatted",
			err:      NewErrorf(ReasonStorage, "backend %q unavailable", "memory"),
			expected: "backend \"memory\" unavailable(code-STORAGE_ERROR)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
			assert.Implements(t, (*error)(nil), tt.err)
		})
	}
}
