// Package ui styles terminal output for the hitlist CLI with lipgloss.
//
// [Styles] is the shared [Palette]. [Summary] renders aligned stage results,
// [Ratio] highlights partial matches, and [Progress] formats a [tasks.ProgressUpdate].
package ui
