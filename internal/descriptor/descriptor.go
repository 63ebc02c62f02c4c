// Package descriptor defines the desired-state descriptors for every
// resource lexctl provisions. Descriptors are plain data: they are built
// fresh for each run, never persisted, and only used at creation time.
package descriptor

import (
	"github.com/dimbot/lexctl/internal/fault"
)

// LatestVersion is the qualifier for the mutable working copy of an intent
// or bot.
const LatestVersion = "$LATEST"

// MaxPromptAttempts is the service-side ceiling for elicitation retries.
const MaxPromptAttempts = 5

// ContentType is the format of a single prompt or statement message.
type ContentType string

const (
	ContentTypePlainText     ContentType = "PlainText"
	ContentTypeSSML          ContentType = "SSML"
	ContentTypeCustomPayload ContentType = "CustomPayload"
)

// Valid reports whether c is one of the recognized content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypePlainText, ContentTypeSSML, ContentTypeCustomPayload:
		return true
	}
	return false
}

// Message is one entry of a prompt or statement.
type Message struct {
	ContentType ContentType `yaml:"content_type" json:"content_type"`
	Content     string      `yaml:"content" json:"content"`
}

// MessageBundle is an ordered list of messages used for a prompt or a
// statement. The service picks one of them at runtime.
type MessageBundle []Message

// PlainText builds a bundle of plain-text messages.
func PlainText(contents ...string) MessageBundle {
	b := make(MessageBundle, 0, len(contents))
	for _, c := range contents {
		b = append(b, Message{ContentType: ContentTypePlainText, Content: c})
	}
	return b
}

// Validate checks the bundle is non-empty and every message is well formed.
func (b MessageBundle) Validate(field string) error {
	if len(b) == 0 {
		return fault.Validationf("%s: at least one message is required", field)
	}
	for i, m := range b {
		if !m.ContentType.Valid() {
			return fault.Validationf("%s: message %d has unrecognized content type %q", field, i, m.ContentType)
		}
		if m.Content == "" {
			return fault.Validationf("%s: message %d is empty", field, i)
		}
	}
	return nil
}

// Prompt is a message bundle the service repeats until it gets an answer
// or runs out of attempts.
type Prompt struct {
	Messages    MessageBundle `yaml:"messages" json:"messages"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
}

// Validate checks the messages and the attempt bound.
func (p Prompt) Validate(field string) error {
	if err := p.Messages.Validate(field); err != nil {
		return err
	}
	if p.MaxAttempts < 1 || p.MaxAttempts > MaxPromptAttempts {
		return fault.Validationf("%s: max attempts %d out of range 1..%d", field, p.MaxAttempts, MaxPromptAttempts)
	}
	return nil
}
