package tui

import tea "charm.land/bubbletea/v2"

// Key strings derived from tea.KeyPressMsg so they match runtime values.
var (
	keyEnter  = tea.KeyPressMsg{Code: tea.KeyEnter}.String()            // "enter"
	keyEscape = tea.KeyPressMsg{Code: tea.KeyEscape}.String()           // "esc"
	keyCtrlC  = (tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}).String() // "ctrl+c"
)
