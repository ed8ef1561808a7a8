// Package message carries player-facing announcements from the game core to
// whatever renders them. Delivery is fire-and-forget.
package message

import (
	"strings"

	"go.uber.org/zap"
)

// Channel categorises a message for the renderer.
type Channel int

const (
	// Plain is ordinary narration.
	Plain Channel = iota
	// Duration marks a timed effect starting, thickening or wearing off.
	Duration
	// Warn is reserved for programmer-error reports surfaced in game.
	Warn
	// Sound is narration the player hears rather than sees.
	Sound
)

var channelNames = [...]string{"plain", "duration", "warn", "sound"}

// String returns the lowercase channel name.
func (c Channel) String() string {
	if c < 0 || int(c) >= len(channelNames) {
		return "unknown"
	}
	return channelNames[c]
}

// ParseChannel maps a channel name to its Channel. Unknown names map to Plain
// and ok is false.
func ParseChannel(name string) (ch Channel, ok bool) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), true
		}
	}
	return Plain, false
}

// Sink accepts messages. Implementations must not block the caller.
type Sink interface {
	Say(ch Channel, text string)
}

// Entry is one recorded message.
type Entry struct {
	Channel Channel
	Text    string
}

// Buffer records messages in order until drained.
// It is not safe for concurrent use.
type Buffer struct {
	entries []Entry
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Say appends a message.
func (b *Buffer) Say(ch Channel, text string) {
	b.entries = append(b.entries, Entry{Channel: ch, Text: text})
}

// Entries returns the recorded messages without clearing them.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Drain returns the recorded messages and clears the buffer.
func (b *Buffer) Drain() []Entry {
	out := b.entries
	b.entries = nil
	return out
}

// Texts returns the text of every recorded message on ch.
func (b *Buffer) Texts(ch Channel) []string {
	var out []string
	for _, e := range b.entries {
		if e.Channel == ch {
			out = append(out, e.Text)
		}
	}
	return out
}

// Contains reports whether any recorded message contains substr.
func (b *Buffer) Contains(substr string) bool {
	for _, e := range b.entries {
		if strings.Contains(e.Text, substr) {
			return true
		}
	}
	return false
}

// LogSink writes every message to a zap logger. Warn-channel messages are
// logged at Warn level, everything else at Info.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink returns a Sink backed by logger.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Say logs the message.
func (s *LogSink) Say(ch Channel, text string) {
	fields := []zap.Field{zap.Stringer("channel", ch), zap.String("text", text)}
	if ch == Warn {
		s.logger.Warn("message", fields...)
		return
	}
	s.logger.Info("message", fields...)
}

// Multi fans each message out to every sink in order.
type Multi []Sink

// Say forwards the message to every sink.
func (m Multi) Say(ch Channel, text string) {
	for _, s := range m {
		s.Say(ch, text)
	}
}

// Discard drops every message.
var Discard Sink = discard{}

type discard struct{}

func (discard) Say(Channel, string) {}
