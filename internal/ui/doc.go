// Package ui implements the interactive playlist builder using bubbletea's Elm architecture.
//
// The TUI has four views:
//  1. [SearchView] : type a query; enter runs the search
//  2. [ResultsView] : browse results; enter adds the selected track to the draft
//  3. [DraftView] : review the draft; d removes a track, r renames, s saves
//  4. [RenameView] : edit the draft name
//
// Tab toggles between results and the draft. A successful save shows a confirmation for five seconds and
// resets the draft to an empty "New Playlist". Search and save run as [tea.Cmd]s so the interface stays
// responsive; their outcomes come back through the Msg union type.
package ui
