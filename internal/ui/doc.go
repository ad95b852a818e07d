// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for discovery runs:
//  1. [RecommendationListView] : Review discovered albums and toggle which ones to keep
//  2. [ConfirmView] : Confirm the playlist build
//  3. [BuildView] : Monitor real-time progress updates
//  4. [ResultView] : Display the playlist link and any unmatched recommendations
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving typed messages from commands.
// Progress updates flow through a channel from the DiscoveryEngine, providing non-blocking status reporting during builds.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
