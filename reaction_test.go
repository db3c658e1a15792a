package translator

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/oklahomer/go-sarah-translator/translation"
)

// stubTimeouts implements the timeoutReader interface for testing.
type stubTimeouts struct {
	seconds int
	ok      bool
}

func (s stubTimeouts) Timeout(_ string) (int, bool) {
	return s.seconds, s.ok
}

func testFlags() translation.Flags {
	return translation.Flags{"🇫🇷": "fr", "🇪🇸": "es"}
}

func reactionEvent(emoji string) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			UserID:    "user-1",
			MessageID: "msg-1",
			ChannelID: "ch-1",
			GuildID:   "g-1",
			Emoji:     discordgo.Emoji{Name: emoji},
		},
	}
}

func reactedMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-1",
		ChannelID: "ch-1",
		GuildID:   "g-1",
		Content:   content,
		Author:    &discordgo.User{ID: "author-1"},
	}
}

func TestReactionEngine_HandleReactionAdd(t *testing.T) {
	t.Run("unknown emoji is ignored without any lookup", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				t.Error("The reacted-to message must not be fetched for an unknown emoji")
				return nil, nil
			},
		}
		engine := &ReactionEngine{
			flags: testFlags(),
			gw:    &fakeTranslator{},
			store: stubTimeouts{},
		}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🎉"))
	})

	t.Run("recognized flag replies with the translation", func(t *testing.T) {
		var gotReference *discordgo.MessageReference
		var gotContent string
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage("bonjour le monde"), nil
			},
			channelMessageSendReplyFunc: func(_ string, content string, reference *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				gotContent = content
				gotReference = reference
				return &discordgo.Message{ID: "reply-1", ChannelID: "ch-1"}, nil
			},
		}
		gw := &fakeTranslator{
			translateFunc: func(_ context.Context, _ string, _ string) (string, error) {
				return "hello world", nil
			},
		}
		engine := &ReactionEngine{
			flags: testFlags(),
			gw:    gw,
			store: stubTimeouts{}, // No timeout configured
			wait: func(_ context.Context, _ time.Duration) bool {
				t.Error("No cleanup must be scheduled when the guild has no timeout")
				return false
			},
		}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		if gw.gotText != "bonjour le monde" || gw.gotTarget != "fr" {
			t.Errorf("Expected translation of the message body to fr, got %q to %q", gw.gotText, gw.gotTarget)
		}
		if gotContent != "hello world" {
			t.Errorf("Unexpected reply %q", gotContent)
		}
		if gotReference == nil || gotReference.MessageID != "msg-1" {
			t.Errorf("Expected a reference to the original message, got %+v", gotReference)
		}
	})

	t.Run("configured timeout schedules the cleanup", func(t *testing.T) {
		deleted := make(chan string, 1)
		cleared := make(chan string, 1)
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage("bonjour"), nil
			},
			channelMessageSendReplyFunc: func(_ string, _ string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return &discordgo.Message{ID: "reply-1", ChannelID: "ch-1"}, nil
			},
			channelMessageDeleteFunc: func(_, messageID string, _ ...discordgo.RequestOption) error {
				deleted <- messageID
				return nil
			},
			messageReactionsRemoveAllFunc: func(_, messageID string, _ ...discordgo.RequestOption) error {
				cleared <- messageID
				return nil
			},
		}

		var gotDelay time.Duration
		engine := &ReactionEngine{
			flags: testFlags(),
			gw:    &fakeTranslator{},
			store: stubTimeouts{seconds: 30, ok: true},
			wait: func(_ context.Context, d time.Duration) bool {
				gotDelay = d
				return true
			},
		}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		select {
		case id := <-deleted:
			if id != "reply-1" {
				t.Errorf("Expected the reply to be deleted, got %q", id)
			}
		case <-time.After(time.Second):
			t.Fatal("Expected the reply to be deleted")
		}

		select {
		case id := <-cleared:
			if id != "msg-1" {
				t.Errorf("Expected the original message's reactions to be cleared, got %q", id)
			}
		case <-time.After(time.Second):
			t.Fatal("Expected the reactions to be cleared")
		}

		if gotDelay != 30*time.Second {
			t.Errorf("Expected a 30s delay, got %s", gotDelay)
		}
	})

	t.Run("canceled wait abandons the cleanup", func(t *testing.T) {
		var deleteCalled atomic.Bool
		waited := make(chan struct{}, 1)
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage("bonjour"), nil
			},
			channelMessageDeleteFunc: func(_, _ string, _ ...discordgo.RequestOption) error {
				deleteCalled.Store(true)
				return nil
			},
		}
		engine := &ReactionEngine{
			flags: testFlags(),
			gw:    &fakeTranslator{},
			store: stubTimeouts{seconds: 30, ok: true},
			wait: func(_ context.Context, _ time.Duration) bool {
				waited <- struct{}{}
				return false
			},
		}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		select {
		case <-waited:
		case <-time.After(time.Second):
			t.Fatal("Expected the cleanup delay to start")
		}

		time.Sleep(50 * time.Millisecond)
		if deleteCalled.Load() {
			t.Error("An abandoned wait must not delete the reply")
		}
	})

	t.Run("bot-authored message is skipped", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				msg := reactedMessage("beep boop")
				msg.Author.Bot = true
				return msg, nil
			},
		}
		gw := &fakeTranslator{}
		engine := &ReactionEngine{flags: testFlags(), gw: gw, store: stubTimeouts{}}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		if gw.called {
			t.Error("A bot-authored message must not be translated")
		}
	})

	t.Run("empty message is skipped", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage(""), nil
			},
		}
		gw := &fakeTranslator{}
		engine := &ReactionEngine{flags: testFlags(), gw: gw, store: stubTimeouts{}}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		if gw.called {
			t.Error("An empty message must not be translated")
		}
	})

	t.Run("fetch failure aborts the handling", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return nil, fmt.Errorf("unknown message")
			},
		}
		gw := &fakeTranslator{}
		engine := &ReactionEngine{flags: testFlags(), gw: gw, store: stubTimeouts{}}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))

		if gw.called {
			t.Error("A failed fetch must not lead to a translation call")
		}
	})

	t.Run("no reply when no translation is needed", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage("bonjour"), nil
			},
			channelMessageSendReplyFunc: func(_ string, _ string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				t.Error("No reply must be sent when the message is already in the target language")
				return nil, nil
			},
		}
		gw := &fakeTranslator{
			translateFunc: func(_ context.Context, _ string, _ string) (string, error) {
				return "", translation.ErrNoTranslationNeeded
			},
		}
		engine := &ReactionEngine{flags: testFlags(), gw: gw, store: stubTimeouts{}}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))
	})

	t.Run("provider failure sends no reply", func(t *testing.T) {
		mock := &mockSession{
			channelMessageFunc: func(_, _ string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				return reactedMessage("bonjour"), nil
			},
			channelMessageSendReplyFunc: func(_ string, _ string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
				t.Error("No reply must be sent when the provider fails")
				return nil, nil
			},
		}
		gw := &fakeTranslator{
			translateFunc: func(_ context.Context, _ string, _ string) (string, error) {
				return "", fmt.Errorf("quota exceeded")
			},
		}
		engine := &ReactionEngine{flags: testFlags(), gw: gw, store: stubTimeouts{}}

		engine.HandleReactionAdd(context.Background(), mock, reactionEvent("🇫🇷"))
	})
}

func TestNewReactionEngine(t *testing.T) {
	engine := NewReactionEngine(testFlags(), &fakeTranslator{}, nil)

	if engine.wait == nil {
		t.Error("Expected a default wait function")
	}
}

func TestWait(t *testing.T) {
	t.Run("elapses in full", func(t *testing.T) {
		if !wait(context.Background(), time.Millisecond) {
			t.Error("Expected the delay to elapse")
		}
	})

	t.Run("aborted by cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if wait(ctx, time.Minute) {
			t.Error("Expected the wait to be abandoned on cancellation")
		}
	})
}
