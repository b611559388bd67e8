// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for studying extracted vocabulary:
//  1. [ListBrowserView] : Browse saved vocabulary lists
//  2. [EntryListView] : Study the words of a selected list
//  3. [QueryView] : Enter a song query for a new extraction
//  4. [ExtractView] : Monitor real-time pipeline progress
//  5. [ResultView] : Display the extraction outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the VocabEngine, providing non-blocking status reporting during extraction runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
