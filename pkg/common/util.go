//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"encoding/json"
	"fmt"
)

// PrettyFormat renders an indented JSON representation of the provided data
// structure. Values that cannot be represented as JSON render as the marshal
// error text instead.
func PrettyFormat(data interface{}) string {
	p, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err.Error()
	}
	return string(p)
}

// PrettyPrint outputs a readable JSON representation of the provided data structure.
func PrettyPrint(data interface{}) {
	fmt.Printf("%s \n", PrettyFormat(data))
}
