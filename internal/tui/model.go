// Package tui presents a chat session in the terminal. Enter submits the
// draft, exactly like the submit control of the web page.
package tui

import (
	"context"
	"strings"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/render"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

const (
	inputCharLimit = 500
	defaultWidth   = 80
	ruleWidth      = 24
	// Rows taken by the header, input box and footer.
	chromeHeight = 7

	messageIndent = "  "
)

// appliedMsg reports that a background generation finished and its result has
// been applied to the session.
type appliedMsg struct{}

type Model struct {
	ctx     context.Context
	session *chat.Session
	input   textinput.Model
	width   int
	height  int
}

func New(ctx context.Context, session *chat.Session) *Model {
	profile := session.Profile()
	input := textinput.New()
	input.Placeholder = profile.Placeholder
	input.CharLimit = inputCharLimit
	input.SetWidth(defaultWidth - 6)
	input.Focus()
	return &Model{
		ctx:     ctx,
		session: session,
		input:   input,
		width:   defaultWidth,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(msg.Width-6, 10))
		return m, nil
	case appliedMsg:
		return m, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case keyCtrlC, keyEscape:
			return m, tea.Quit
		case keyEnter:
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetDraft(m.input.Value())
	return m, cmd
}

// submit hands the draft to the session. Blank drafts and drafts typed while
// a request is pending leave the input untouched.
func (m *Model) submit() tea.Cmd {
	done, ok := m.session.Send(m.ctx, m.input.Value())
	if !ok {
		return nil
	}
	m.input.Reset()
	return func() tea.Msg {
		<-done
		return appliedMsg{}
	}
}

func (m *Model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.SetContent(m.content())
	return v
}

func (m *Model) content() string {
	state := m.session.Snapshot()
	profile := m.session.Profile()

	var b strings.Builder
	b.WriteString(titleStyle.Render(profile.Title))
	b.WriteString("\n\n")

	lines := make([]string, 0, len(state.Messages)*4)
	for _, msg := range state.Messages {
		lines = append(lines, m.renderMessage(msg)...)
		lines = append(lines, "")
	}
	if state.Pending {
		lines = append(lines, m.wrap(loadingStyle, "", m.session.LoadingText())...)
	}
	b.WriteString(strings.Join(m.visible(lines), "\n"))
	b.WriteString("\n")

	box := inputStyle
	if state.Pending {
		box = inputDisabledStyle
	}
	b.WriteString(box.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.footer(profile, state.Pending))
	return b.String()
}

// visible keeps the newest lines that fit above the input box. Lines must
// already be wrapped to the terminal width so each one is a single row.
func (m *Model) visible(lines []string) []string {
	if m.height == 0 {
		return lines
	}
	room := max(m.height-chromeHeight, 1)
	if len(lines) <= room {
		return lines
	}
	return lines[len(lines)-room:]
}

func (m *Model) renderMessage(msg chat.Message) []string {
	label := aiLabelStyle.Render("AI:")
	if msg.Sender == chat.SenderUser {
		label = userLabelStyle.Render("You:")
	}
	lines := []string{label}
	for _, seg := range render.Parse(sanitize(msg.Text)) {
		switch seg.Kind {
		case render.KindStrong:
			lines = append(lines, m.wrap(strongStyle, messageIndent, seg.Text)...)
		case render.KindRule:
			lines = append(lines, messageIndent+ruleStyle.Render(strings.Repeat("─", min(ruleWidth, m.textWidth(messageIndent)))))
		case render.KindBreak:
			lines = append(lines, "")
		default:
			lines = append(lines, m.wrap(textStyle, messageIndent, seg.Text)...)
		}
	}
	return lines
}

func (m *Model) textWidth(indent string) int {
	return max(m.width-len(indent), 10)
}

// wrap renders text in style, wrapped to the terminal width, and returns one
// entry per screen row.
func (m *Model) wrap(style lipgloss.Style, indent, text string) []string {
	rows := strings.Split(style.Width(m.textWidth(indent)).Render(text), "\n")
	for i, row := range rows {
		rows[i] = indent + row
	}
	return rows
}

func (m *Model) footer(profile chat.Profile, pending bool) string {
	submit := footerKeyStyle.Render("enter") + " " + footerDescStyle.Render(profile.SubmitLabel)
	if pending {
		submit = footerDisabledStyle.Render("enter ...")
	}
	quit := footerKeyStyle.Render("esc") + " " + footerDescStyle.Render("quit")
	return lipgloss.JoinHorizontal(lipgloss.Top, submit, "  ", quit)
}

// sanitize drops control characters so model output cannot drive the
// terminal. Newlines and tabs are kept.
func sanitize(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, text)
}
