// Package report accumulates per-repository command output and renders the final report.
package report
