package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spx/internal/models"
)

// listingLoadedMsg carries the playlist listing fetched during [Model.Init],
// or the error that ended the picker before it could show anything.
type listingLoadedMsg struct {
	playlists []models.PlaylistSummary
	err       error
}

var _ tea.Msg = listingLoadedMsg{}
