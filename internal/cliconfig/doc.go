// Package cliconfig manages the rainctl user configuration file.
//
// The file stores client-side metadata only: controller nicknames, last
// known addresses, and per-zone labels keyed by controller MAC. Device
// passwords are never written to disk; the CLI prompts for them.
//
// The configuration lives in the OS-appropriate location:
//   - Linux: $XDG_CONFIG_HOME/rainctl or $HOME/.config/rainctl
//   - macOS: $HOME/.config/rainctl
//   - Windows: %LOCALAPPDATA%\rainctl
package cliconfig
