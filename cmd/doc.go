// Package cmd implements the mybackup command-line interface.
//
// The package wires the collection and upload packages into cobra
// subcommands (collect, upload, run, check, metadata, genkey, install).
// Configuration comes from flags, MYBACKUP_* environment variables and an
// optional .env file, in that order of precedence.
//
// New contributors should start by reading init.go to see how flags and
// viper are wired, runCmd.go for the full collect-then-upload flow, and
// report_yaml.go for the structured run report.
package cmd
