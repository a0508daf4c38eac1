// Package batch drives a run: it discovers repositories, executes one command in each,
// feeds successful results into a renderer, and emits the rendered report once.
package batch
