//
//  Copyright © Manetu Inc. All rights reserved.
//

package mock

import "github.com/manetu/ruleengine/pkg/core/model"

func stringAt(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func annotationsAt(m map[string]interface{}, key string) model.Annotations {
	v, ok := m[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(model.Annotations, len(v))
	for k, value := range v {
		out[k] = value
	}
	return out
}
