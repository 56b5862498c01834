// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing flow shared by the configuration
// file and the native build project file:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode into a Go struct
//
// # Usage
//
//	//go:embed project_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Project](
//	    schemaBytes,
//	    userFileBytes,
//	    "#Project",
//	    cueutil.WithFilename("javawizard.cue"),
//	)
//	if err != nil {
//	    return nil, err // error carries the CUE path of the offending field
//	}
//	return result.Value, nil
package cueutil
