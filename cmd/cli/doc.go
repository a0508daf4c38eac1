// Package cli constructs the gitexec command-line interface. It wires the Cobra
// root command to the Viper configuration loader and the zap logger, and it
// assembles the discovery, execution, and reporting pipeline for each run.
package cli
