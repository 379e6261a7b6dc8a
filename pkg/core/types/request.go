//
//  Copyright © Manetu Inc. All rights reserved.
//

package types

import (
	"encoding/json"
	"errors"

	"github.com/manetu/ruleengine/pkg/rule"
)

// AnyRequest allows an authorization request to be submitted as an unparsed
// JSON string, an unmarshalled map, or a typed [rule.Request].  This allows the
// caller to chose between convenience and efficiency.
type AnyRequest interface{}

// UnmarshalRequest parses a JSON string or generic map, if required, into a
// typed request. If the input is already a typed request, it's just passed
// through.
func UnmarshalRequest(input AnyRequest) (*rule.Request, error) {

	switch input := input.(type) {
	case string:
		req := &rule.Request{}
		// Now unmarshal into the typed request.
		err := json.Unmarshal([]byte(input), req)
		if err != nil {
			return nil, err
		}

		return req, nil
	case map[string]interface{}:
		// Generic maps take a round trip through JSON so attribute values
		// land in their typed form.
		raw, err := json.Marshal(input)
		if err != nil {
			return nil, err
		}
		req := &rule.Request{}
		if err := json.Unmarshal(raw, req); err != nil {
			return nil, err
		}
		return req, nil
	case *rule.Request:
		if input == nil {
			return nil, errors.New("nil request")
		}
		return input, nil
	case rule.Request:
		return &input, nil
	default:
		return nil, errors.New("invalid type")
	}
}
