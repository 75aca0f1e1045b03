// Copyright © 2025 The hissp authors

package main

import "github.com/vishalbelsare/hissp/cmd"

func main() {
	cmd.Execute()
}
