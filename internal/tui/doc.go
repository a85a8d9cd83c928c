// Package tui implements the rainctl interactive dashboard.
//
// The dashboard is a bubbletea application with three screens:
//
//	discovery  - scans the network and lists responding controllers
//	password   - prompts for the controller password and authenticates
//	dashboard  - live zone and program state with start/stop controls
//
// Screen transitions are coordinated by AppModel; each screen is its own
// model with its own Init/Update/View.
package tui
