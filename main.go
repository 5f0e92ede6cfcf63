package main

import (
	"github.com/xkilldash9x/fleetimport/cmd"
)

func main() {
	cmd.Execute()
}
