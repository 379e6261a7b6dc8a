//
//  Copyright © Manetu Inc. All rights reserved.
//

package common

import (
	"io"
	"log"
	"os"
)

// GetInputExpression reads an expression from the named file, or from stdin
// when the path is "-" or empty.
func GetInputExpression(path string) string {
	var f *os.File
	var err error
	if path == "-" || path == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(path) // #nosec G304 -- CLI tool intentionally reads user-provided paths
		if err != nil {
			log.Fatal(err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		log.Fatal(err)
	}

	return string(data)
}
