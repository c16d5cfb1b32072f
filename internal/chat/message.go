package chat

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of the conversation. Text is stored already rendered
// and never changes after the message is appended.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// State is a point-in-time copy of a session.
type State struct {
	Messages []Message `json:"messages"`
	Draft    string    `json:"draft"`
	Pending  bool      `json:"pending"`
}

func (s State) CountBySender(sender Sender) int {
	n := 0
	for _, m := range s.Messages {
		if m.Sender == sender {
			n++
		}
	}
	return n
}
