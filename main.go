// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/amankrmj/javawizard/cmd/javawizard"

func main() {
	cmd.Execute()
}
