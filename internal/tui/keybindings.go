package tui

import "github.com/charmbracelet/bubbles/key"

// SharedKeyMap defines keybindings available on all screens.
type SharedKeyMap struct {
	ForceQuit key.Binding
	Quit      key.Binding
}

// SharedKeys are available on all screens.
var SharedKeys = SharedKeyMap{
	ForceQuit: key.NewBinding(
		key.WithKeys(KeyCtrlC),
		key.WithHelp("ctrl+c", "force quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// ListKeyMap defines keybindings for the checklist screen.
type ListKeyMap struct {
	Check   key.Binding
	Jump    key.Binding
	Reset   key.Binding
	Details key.Binding
	Export  key.Binding
	Copy    key.Binding
}

// ListKeys are the keybindings for the checklist screen.
var ListKeys = ListKeyMap{
	Check: key.NewBinding(
		key.WithKeys(KeyEnter, KeySpace, "x"),
		key.WithHelp("enter/space", "check"),
	),
	Jump: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "jump to row"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Details: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "details"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy state"),
	),
}

// PromptKeyMap defines keybindings while a text prompt is open.
type PromptKeyMap struct {
	Submit key.Binding
	Cancel key.Binding
}

// PromptKeys are the keybindings for the jump and export prompts.
var PromptKeys = PromptKeyMap{
	Submit: key.NewBinding(
		key.WithKeys(KeyEnter),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys(KeyEsc),
		key.WithHelp("esc", "cancel"),
	),
}

// ConfirmKeyMap defines keybindings for the reset confirmation.
type ConfirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

// ConfirmKeys are the keybindings for yes/no confirmation.
var ConfirmKeys = ConfirmKeyMap{
	Yes: key.NewBinding(
		key.WithKeys("y", "Y", KeyEnter),
		key.WithHelp("y", "yes"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N", KeyEsc),
		key.WithHelp("n", "no"),
	),
}
