package ui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
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
	MsgItemsLoaded MsgKind = iota
)

type itemsLoaded struct {
	title string
	items []list.Item
	err   error
}

// itemsLoadedMsg is the constructor for [MsgItemsLoaded]
func itemsLoadedMsg(title string, items []list.Item, err error) Msg {
	return Msg{kind: MsgItemsLoaded, data: itemsLoaded{title: title, items: items, err: err}}
}
