package translator

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"

	"github.com/oklahomer/go-sarah-translator/guildconfig"
	"github.com/oklahomer/go-sarah-translator/translation"
)

// timeoutReader is the part of the settings store the reaction engine reads.
type timeoutReader interface {
	Timeout(guildID string) (seconds int, ok bool)
}

var _ timeoutReader = (*guildconfig.Store)(nil)

// ReactionEngine translates a message when a flag emoji reaction is
// added to it. When the guild has a timeout configured, the translation
// reply is deleted and the message's reactions are cleared after that
// delay; without one, the reply stays.
type ReactionEngine struct {
	flags translation.Flags
	gw    Translator
	store timeoutReader

	// wait blocks for the cleanup delay and reports whether it elapsed
	// in full. Tests replace this to avoid real timers.
	wait func(ctx context.Context, d time.Duration) bool
}

var _ ReactionHandler = (*ReactionEngine)(nil)

// NewReactionEngine creates a ReactionEngine with the given flag
// definitions, translation capability, and settings store.
func NewReactionEngine(flags translation.Flags, gw Translator, store *guildconfig.Store) *ReactionEngine {
	return &ReactionEngine{
		flags: flags,
		gw:    gw,
		store: store,
		wait:  wait,
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// HandleReactionAdd implements ReactionHandler. Reactions with an emoji
// that is not in the flag catalog are ignored without any state read.
// Each qualifying reaction independently sends its own reply and
// schedules its own cleanup.
func (e *ReactionEngine) HandleReactionAdd(ctx context.Context, m Messenger, event *discordgo.MessageReactionAdd) {
	code, ok := e.flags.Code(event.Emoji.Name)
	if !ok {
		return
	}

	// The reaction event itself carries no message body.
	msg, err := m.ChannelMessage(event.ChannelID, event.MessageID)
	if err != nil {
		logger.Errorf("Failed to fetch reacted-to message %s: %+v", event.MessageID, err)
		return
	}
	if msg.Content == "" || (msg.Author != nil && msg.Author.Bot) {
		return
	}

	translated, err := e.gw.Translate(ctx, msg.Content, code)
	if errors.Is(err, translation.ErrNoTranslationNeeded) {
		return
	}
	if err != nil {
		logger.Errorf("Failed to translate message %s to %s: %+v", event.MessageID, code, err)
		return
	}

	reply, err := m.ChannelMessageSendReply(event.ChannelID, translated, msg.Reference())
	if err != nil {
		logger.Errorf("Failed to reply to message %s: %+v", event.MessageID, err)
		return
	}

	seconds, ok := e.store.Timeout(event.GuildID)
	if !ok {
		// No timeout configured: the translation stays.
		return
	}

	go e.cleanup(ctx, m, event, reply, time.Duration(seconds)*time.Second)
}

// cleanup deletes the translation reply and clears all reactions from
// the original message once the delay elapses. The wait is abandoned
// when ctx is canceled; cleanups are best effort, not durable.
func (e *ReactionEngine) cleanup(ctx context.Context, m Messenger, event *discordgo.MessageReactionAdd, reply *discordgo.Message, delay time.Duration) {
	if !e.wait(ctx, delay) {
		return
	}

	if err := m.ChannelMessageDelete(reply.ChannelID, reply.ID); err != nil {
		logger.Warnf("Failed to delete translation reply %s: %+v", reply.ID, err)
	}
	if err := m.MessageReactionsRemoveAll(event.ChannelID, event.MessageID); err != nil {
		logger.Warnf("Failed to clear reactions from message %s: %+v", event.MessageID, err)
	}
}
