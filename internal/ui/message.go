package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/services"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchDone MsgKind = iota
	MsgSaveDone
	MsgNoticeExpired
)

type searchResult struct {
	query  string
	tracks []models.Track
}

type saveResult struct {
	result *services.SaveResult
	err    error
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, tracks []models.Track) Msg {
	return Msg{kind: MsgSearchDone, data: searchResult{query, tracks}}
}

// saveDoneMsg is the constructor for [MsgSaveDone]
func saveDoneMsg(result *services.SaveResult, err error) Msg {
	return Msg{kind: MsgSaveDone, data: saveResult{result, err}}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(id int) Msg {
	return Msg{kind: MsgNoticeExpired, data: id}
}
