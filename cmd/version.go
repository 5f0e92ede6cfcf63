package cmd

// Version is the application version, intended to be overridden at build time:
//
//	go build -ldflags "-X github.com/xkilldash9x/fleetimport/cmd.Version=1.2.0"
var Version = "1.0"
