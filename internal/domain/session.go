package domain

// Message is a single chat bubble. Messages are append-only within a
// session: never mutated in place, never reordered.
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// ChatSession is one persisted conversation thread. A session owns its
// message log exclusively; the active session is referenced by ID, never
// by a duplicated copy.
type ChatSession struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	RoadmapID int       `json:"roadmapId"`
	Messages  []Message `json:"messages"`
}

// UserMessages returns the user-authored messages in submission order.
func (s *ChatSession) UserMessages() []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.IsUser {
			out = append(out, m)
		}
	}
	return out
}

// BotMessageCount counts the non-user messages in the log. Selecting a
// session uses this to recompute how many canned questions were already
// asked.
func (s *ChatSession) BotMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if !m.IsUser {
			n++
		}
	}
	return n
}

// UserProfile describes the current identity for display purposes.
// Guest mode is a first-class degradation, not an error.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Guest       bool   `json:"guest"`
}
