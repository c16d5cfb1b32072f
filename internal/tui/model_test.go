package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/generation"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

type funcGenerator func(ctx context.Context, req generation.Request) generation.Result

func (f funcGenerator) Generate(ctx context.Context, req generation.Request) generation.Result {
	return f(ctx, req)
}

func testModel(profile chat.Profile, gen chat.Generator) *Model {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := chat.NewSession(profile, gen, chat.WithID("test"), chat.WithLogger(logger))
	return New(context.Background(), session)
}

func keyPress(key string) tea.KeyPressMsg {
	switch key {
	case keyEnter:
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case keyEscape:
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case keyCtrlC:
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	default:
		return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(keyPress(string(r)))
	}
}

// runCmd executes cmd synchronously and feeds its message back to the model.
func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	msg := cmd()
	if _, ok := msg.(appliedMsg); !ok {
		t.Fatalf("unexpected message %T", msg)
	}
	m.Update(msg)
}

func TestKeyStrings(t *testing.T) {
	if keyEnter != "enter" || keyEscape != "esc" || keyCtrlC != "ctrl+c" {
		t.Fatalf("unexpected key strings: %q %q %q", keyEnter, keyEscape, keyCtrlC)
	}
}

func TestTypingUpdatesDraft(t *testing.T) {
	m := testModel(chat.TextProfile(), nil)
	typeText(m, "egg")
	if got := m.session.Snapshot().Draft; got != "egg" {
		t.Fatalf("draft = %q, want egg", got)
	}
}

func TestEnterSubmitsDraft(t *testing.T) {
	var prompts []string
	m := testModel(chat.TextProfile(), funcGenerator(func(ctx context.Context, req generation.Request) generation.Result {
		prompts = append(prompts, req.Prompt)
		return generation.Result{Kind: generation.KindText, Value: "hello back"}
	}))
	typeText(m, "hello")

	_, cmd := m.Update(keyPress(keyEnter))
	if m.input.Value() != "" {
		t.Fatalf("input not cleared after submit")
	}
	runCmd(t, m, cmd)

	state := m.session.Snapshot()
	if len(state.Messages) != 2 || state.Messages[0].Text != "hello" || state.Messages[1].Text != "hello back" {
		t.Fatalf("unexpected messages: %+v", state.Messages)
	}
	if len(prompts) != 1 || prompts[0] != "hello" {
		t.Fatalf("prompts = %v", prompts)
	}
	if state.Pending {
		t.Fatalf("session still pending")
	}
}

func TestEnterOnBlankDraftIsNoop(t *testing.T) {
	m := testModel(chat.TextProfile(), nil)
	typeText(m, "   ")
	_, cmd := m.Update(keyPress(keyEnter))
	if cmd != nil {
		t.Fatalf("blank submit returned a command")
	}
	if n := len(m.session.Snapshot().Messages); n != 0 {
		t.Fatalf("blank submit added %d messages", n)
	}
}

func TestEnterWhilePendingIsNoop(t *testing.T) {
	release := make(chan struct{})
	m := testModel(chat.TextProfile(), funcGenerator(func(ctx context.Context, req generation.Request) generation.Result {
		<-release
		return generation.Result{Kind: generation.KindText, Value: "done"}
	}))
	typeText(m, "first")
	_, first := m.Update(keyPress(keyEnter))

	typeText(m, "second")
	_, second := m.Update(keyPress(keyEnter))
	if second != nil {
		t.Fatalf("submit while pending returned a command")
	}
	if m.input.Value() != "second" {
		t.Fatalf("input = %q, draft should be kept while pending", m.input.Value())
	}

	content := m.content()
	if !strings.Contains(content, "AI is typing...") {
		t.Fatalf("loading indicator missing:\n%s", content)
	}
	if !strings.Contains(content, "enter ...") {
		t.Fatalf("submit affordance not shown as disabled:\n%s", content)
	}

	close(release)
	runCmd(t, m, first)
	state := m.session.Snapshot()
	if len(state.Messages) != 2 || state.CountBySender(chat.SenderUser) != 1 {
		t.Fatalf("unexpected messages: %+v", state.Messages)
	}
	if strings.Contains(m.content(), "AI is typing...") {
		t.Fatalf("loading indicator still shown after result")
	}
}

func TestRecipeRendering(t *testing.T) {
	payload := `[{"recipeName":"Omelette","ingredients":["egg","cheese"],"instructions":"Whisk and cook."}]`
	m := testModel(chat.RecipeProfile(), funcGenerator(func(ctx context.Context, req generation.Request) generation.Result {
		return generation.Result{Kind: generation.KindStructured, Value: payload}
	}))
	typeText(m, "egg")
	_, cmd := m.Update(keyPress(keyEnter))
	runCmd(t, m, cmd)

	content := m.content()
	for _, want := range []string{"Leftover Food Recipe Generator", "Omelette", "Ingredients: egg, cheese", "Whisk and cook."} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "**Omelette**") {
		t.Fatalf("raw markup leaked into view")
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{keyCtrlC, keyEscape} {
		m := testModel(chat.TextProfile(), nil)
		_, cmd := m.Update(keyPress(key))
		if cmd == nil {
			t.Fatalf("%s returned no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s did not quit", key)
		}
	}
}

func TestSanitizeDropsControlCharacters(t *testing.T) {
	got := sanitize("a\x1b]2;pwned\x07b\nc\td\u009b")
	if got != "a]2;pwnedb\nc\td" {
		t.Fatalf("sanitize = %q", got)
	}
}

func TestLongRepliesWrapBeforeTrimming(t *testing.T) {
	m := testModel(chat.TextProfile(), nil)
	height := chromeHeight + 3
	m.Update(tea.WindowSizeMsg{Width: 30, Height: height})

	if _, ok := m.session.Submit("hi"); !ok {
		t.Fatalf("expected submit to be accepted")
	}
	reply := strings.Repeat("leftover rice makes good fried rice ", 6)
	m.session.Apply(generation.Result{Kind: generation.KindText, Value: reply})

	rows := m.renderMessage(m.session.Snapshot().Messages[1])
	if len(rows) < 4 {
		t.Fatalf("expected long reply to wrap, got %d rows", len(rows))
	}
	for _, row := range rows {
		if w := lipgloss.Width(row); w > 30 {
			t.Fatalf("row wider than terminal (%d): %q", w, row)
		}
	}

	out := m.content()
	if n := strings.Count(out, "\n") + 1; n > height {
		t.Fatalf("content has %d rows, terminal has %d", n, height)
	}
	if !strings.Contains(out, "quit") || !strings.Contains(out, "╰") {
		t.Fatalf("input box or footer pushed off screen:\n%s", out)
	}
}

func TestVisibleKeepsNewestLines(t *testing.T) {
	m := testModel(chat.TextProfile(), nil)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: chromeHeight + 2})
	got := m.visible([]string{"1", "2", "3", "4"})
	if len(got) != 2 || got[0] != "3" || got[1] != "4" {
		t.Fatalf("visible = %v", got)
	}
}
