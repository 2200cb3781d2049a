// Package process controls external converter processes: each command runs
// in its own process group so that a cancelled conversion takes its children
// (pandoc filters, xelatex, browser helpers) down with it.
package process
