// Package main hosts the lqcli entrypoint and command graph.
//
// The Cobra command tree lists and syncs configured sources, imports single
// links ad hoc, shows the local sync history, and scaffolds configuration. It
// centralizes configuration loading and logger setup so subcommands only wire
// internal packages together.
package main
