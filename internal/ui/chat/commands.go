// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/albert-tui/internal/export"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// command is a parsed slash command.
type command struct {
	name string
	args []string
}

// commandHandlers maps command names to their handlers. Text starting with
// a slash that names no handler is sent to Albert unchanged.
var commandHandlers = map[string]func(Model, []string) (tea.Model, tea.Cmd){
	"/help":   (Model).cmdHelp,
	"/export": (Model).cmdExport,
	"/status": (Model).cmdStatus,
	"/quit":   (Model).cmdQuit,
	"/exit":   (Model).cmdQuit,
}

// commandNames lists the commands for the help footer.
func commandNames() []string {
	return []string{"/help", "/export [md|json|yaml]", "/status", "/quit"}
}

// parseCommand recognizes a known slash command in text.
func parseCommand(text string) (command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return command{}, false
	}
	name := strings.ToLower(fields[0])
	if _, ok := commandHandlers[name]; !ok {
		return command{}, false
	}
	return command{name: name, args: fields[1:]}, true
}

func (m Model) runCommand(c command) (tea.Model, tea.Cmd) {
	return commandHandlers[c.name](m, c.args)
}

func (m Model) cmdHelp(_ []string) (tea.Model, tea.Cmd) {
	m.showHelp = !m.showHelp
	m.clearNotice()
	m.layout()
	return m, nil
}

func (m Model) cmdExport(args []string) (tea.Model, tea.Cmd) {
	format := m.cfg.Export.Format
	if len(args) > 0 {
		format = args[0]
	}
	if _, err := export.ForFormat(format, nil); err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}
	m.setNotice("Exporting...", false)
	return m, exportCmd(m.snapshot(), format, m.cfg.Export.Dir)
}

func (m Model) cmdStatus(_ []string) (tea.Model, tea.Cmd) {
	status := fmt.Sprintf("%s %s • session %s • %d messages",
		m.header.Status, m.cfg.Endpoint.URL, shortID(m.ctrl.ID()), m.ctrl.Len())
	m.setNotice(status, false)
	return m, nil
}

func (m Model) cmdQuit(_ []string) (tea.Model, tea.Cmd) {
	return m.quit()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
