// Package ui implements an interactive catalog browser using bubbletea's Elm architecture.
//
// The browser has three views:
//  1. [MenuView] : pick a chart (top tracks, top albums, new albums, top artists)
//  2. [ListView] : scroll and filter the loaded items
//  3. [DetailView] : fields of the selected artist or product
//
// From an artist's detail view, s loads similar artists into a new list. Lists form a stack, so
// esc walks back to where you came from.
//
// Loads run as [tea.Cmd] functions and come back as a [Msg]. Keyboard navigation uses vim-style
// bindings with contextual help from charmbracelet/bubbles/help.
package ui
