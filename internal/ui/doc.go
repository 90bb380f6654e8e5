// Package ui implements the interactive playlist picker using bubbletea's
// Elm architecture.
//
// The export command opens the picker when no playlist reference is given.
// [Model] fetches the account's playlist listing on start, shows it in a
// filterable list, and records the selection; [Pick] wraps the whole run and
// hands the chosen playlist back to the caller.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
