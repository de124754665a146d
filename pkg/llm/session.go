package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/locale"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

const (
	// ContextLimit bounds the grounding text, in characters.
	ContextLimit = 30000

	FallbackReply = "Error communicating with AI."
	EmptyReply    = "I couldn't generate a response."

	contextAck = "Understood. I will answer using this document."
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	// Notice marks a locale switch notice rather than something the user typed.
	Notice bool `json:"notice,omitempty"`
}

// Session is a follow-up conversation bound to one analysis result. It is
// not safe for concurrent Send calls.
type Session struct {
	llm       llms.Model
	options   []llms.CallOption
	resultID  string
	locale    string
	grounding string
	turns     []Turn
}

func OpenSession(model llms.Model, resultID, grounding, code string, options ...llms.CallOption) *Session {
	return &Session{
		llm:       model,
		options:   options,
		resultID:  resultID,
		locale:    code,
		grounding: truncate(grounding, ContextLimit),
	}
}

func (s *Session) ResultID() string { return s.resultID }
func (s *Session) Locale() string   { return s.locale }

// SystemInstruction is the response-language instruction for the current locale.
func (s *Session) SystemInstruction() string {
	name := locale.Name(s.locale)
	return fmt.Sprintf("You are a helpful assistant analyzing a document. "+
		"The user's preferred language is %s. ALWAYS answer in %s. "+
		"Use the provided document context to answer questions.", name, name)
}

// Transcript returns a copy of the turns exchanged so far.
func (s *Session) Transcript() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Send appends the user turn and the model's reply. On failure the fallback
// reply is appended and returned along with the transport error.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.turns = append(s.turns, Turn{Speaker: SpeakerUser, Text: text})

	resp, err := s.llm.GenerateContent(ctx, s.messages(), s.options...)
	if err != nil {
		s.turns = append(s.turns, Turn{Speaker: SpeakerAssistant, Text: FallbackReply})
		return FallbackReply, models.NewTransportError("chat request failed", err)
	}

	reply := ""
	if resp != nil && len(resp.Choices) > 0 && resp.Choices[0] != nil {
		reply = strings.TrimSpace(resp.Choices[0].Content)
	}
	if reply == "" {
		reply = EmptyReply
	}

	s.turns = append(s.turns, Turn{Speaker: SpeakerAssistant, Text: reply})
	return reply, nil
}

// Resync records a locale switch without discarding prior turns. The notice
// reaches the model with the next Send. It reports whether a notice was added.
func (s *Session) Resync(code string) bool {
	if code == s.locale {
		return false
	}
	s.locale = code
	name := locale.Name(code)
	s.turns = append(s.turns, Turn{
		Speaker: SpeakerUser,
		Text: fmt.Sprintf("[SYSTEM UPDATE] The user has switched the interface language to %s. "+
			"Please respond to all future messages in %s.", name, name),
		Notice: true,
	})
	return true
}

func (s *Session) messages() []llms.MessageContent {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, s.SystemInstruction()),
		llms.TextParts(schema.ChatMessageTypeHuman, "Document Context:\n"+s.grounding),
		llms.TextParts(schema.ChatMessageTypeAI, contextAck),
	}
	for _, t := range s.turns {
		role := schema.ChatMessageTypeHuman
		if t.Speaker == SpeakerAssistant {
			role = schema.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, t.Text))
	}
	return messages
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
