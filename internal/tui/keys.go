package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is every binding the panel uses. Movement keys (w/a/s/d and
// space) are deliberately absent: while movement capture is engaged
// they are read raw so they can't collide with command bindings.
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Open  key.Binding
	Back  key.Binding
	Quit  key.Binding
	Retry key.Binding

	Request    key.Binding
	Pause      key.Binding
	Resume     key.Binding
	SkipTrack  key.Binding
	ClearQueue key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	Movement   key.Binding
	Logout     key.Binding
	Forget     key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "control panel"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Retry: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "retry"),
	),
	Request: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "request song"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Resume: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "resume"),
	),
	SkipTrack: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "skip"),
	),
	ClearQueue: key.NewBinding(
		key.WithKeys("C"),
		key.WithHelp("C", "clear queue"),
	),
	VolumeUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "volume up"),
	),
	VolumeDown: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "volume down"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute"),
	),
	Movement: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "movement on/off"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "logout"),
	),
	Forget: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "forget name"),
	),
}
