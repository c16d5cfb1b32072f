package web

import (
	"bytes"
	"fmt"
	"html/template"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/render"
)

const pendingSubmitLabel = "..."

type messageView struct {
	Sender   chat.Sender
	Segments []render.Segment
}

type pageView struct {
	Title       string
	Placeholder string
	SubmitLabel string
	LoadingText string
	Pending     bool
	Messages    []messageView
}

// statePayload is pushed to the browser over the websocket after every change.
type statePayload struct {
	Pending     bool   `json:"pending"`
	HTML        string `json:"html"`
	SubmitLabel string `json:"submit_label"`
}

func newPageView(session *chat.Session) pageView {
	profile := session.Profile()
	state := session.Snapshot()
	messages := make([]messageView, 0, len(state.Messages))
	for _, m := range state.Messages {
		messages = append(messages, messageView{Sender: m.Sender, Segments: render.Parse(m.Text)})
	}
	return pageView{
		Title:       profile.Title,
		Placeholder: profile.Placeholder,
		SubmitLabel: profile.SubmitLabel,
		LoadingText: session.LoadingText(),
		Pending:     state.Pending,
		Messages:    messages,
	}
}

func (v pageView) currentSubmitLabel() string {
	if v.Pending {
		return pendingSubmitLabel
	}
	return v.SubmitLabel
}

func renderFragment(tmpl *template.Template, view pageView) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "messages", view); err != nil {
		return "", fmt.Errorf("render messages: %w", err)
	}
	return buf.String(), nil
}

func newStatePayload(tmpl *template.Template, session *chat.Session) (statePayload, error) {
	view := newPageView(session)
	html, err := renderFragment(tmpl, view)
	if err != nil {
		return statePayload{}, err
	}
	return statePayload{
		Pending:     view.Pending,
		HTML:        html,
		SubmitLabel: view.currentSubmitLabel(),
	}, nil
}
