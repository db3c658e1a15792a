package translator

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/oklahomer/go-sarah-translator/guildconfig"
	"github.com/oklahomer/go-sarah-translator/translation"
)

// Translator is the translation capability the command handlers and the
// reaction engine depend on. *translation.Gateway satisfies this interface.
type Translator interface {
	Translate(ctx context.Context, text string, target string) (string, error)
}

// CommandProps returns the bot's commands in dispatch priority order:
// guild configuration commands first, then one-off translation, then
// standing auto-translation. go-sarah executes the first registered
// command whose matcher claims an input, so registering these in the
// returned order preserves that priority. A config-prefixed message
// with an unrecognized sub-command matches neither config command and
// falls through to the translation handlers.
func CommandProps(cfg *Config, store *guildconfig.Store, gw Translator, catalog *translation.Catalog) []*sarah.CommandProps {
	timeout := &timeoutCommand{cfg: cfg, store: store}
	auto := &autoConfigCommand{cfg: cfg, store: store, catalog: catalog}
	manual := &manualTranslateCommand{cfg: cfg, gw: gw, catalog: catalog}
	standing := &autoTranslateCommand{store: store, gw: gw}

	return []*sarah.CommandProps{
		sarah.NewCommandPropsBuilder().
			BotType(DISCORD).
			Identifier("timeout").
			MatchFunc(timeout.Match).
			Func(timeout.Execute).
			Instruction(fmt.Sprintf("Input %stimeout <seconds> to set how long reaction translations stay before removal.", cfg.configPrefix())).
			MustBuild(),
		sarah.NewCommandPropsBuilder().
			BotType(DISCORD).
			Identifier("auto").
			MatchFunc(auto.Match).
			Func(auto.Execute).
			Instruction(fmt.Sprintf("Input %sauto on|off [language code] to toggle automatic translation of your messages.", cfg.configPrefix())).
			MustBuild(),
		sarah.NewCommandPropsBuilder().
			BotType(DISCORD).
			Identifier("translate").
			MatchFunc(manual.Match).
			Func(manual.Execute).
			Instruction(fmt.Sprintf("Input %s<language code> <text> to translate text once, e.g. %sfr hello.", cfg.TranslatePrefix, cfg.TranslatePrefix)).
			MustBuild(),
		sarah.NewCommandPropsBuilder().
			BotType(DISCORD).
			Identifier("autotranslate").
			MatchFunc(standing.Match).
			Func(standing.Execute).
			Instruction("Translates your messages automatically once enabled with the auto command.").
			MustBuild(),
	}
}

// timeoutCommand persists the guild's reaction cleanup delay.
type timeoutCommand struct {
	cfg   *Config
	store *guildconfig.Store
}

func (c *timeoutCommand) pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(c.cfg.configPrefix()) + `timeout\b`)
}

func (c *timeoutCommand) Match(input sarah.Input) bool {
	i, ok := input.(*Input)
	return ok && i.GuildID() != "" && c.pattern().MatchString(i.Message())
}

func (c *timeoutCommand) Execute(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	i, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("%T is not a *translator.Input", input)
	}

	parts := strings.Fields(i.Message())
	if len(parts) < 2 {
		return NewResponse(input, fmt.Sprintf("Usage: %stimeout <seconds>", c.cfg.configPrefix()))
	}

	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds < 0 {
		return NewResponse(input, fmt.Sprintf("%q is not a valid number of seconds", parts[1]))
	}

	if err := c.store.SetTimeout(i.GuildID(), seconds); err != nil {
		logger.Errorf("Failed to persist timeout for guild %s: %+v", i.GuildID(), err)
		return NewResponse(input, "Failed to save the setting. Please try again.")
	}

	return NewResponse(input, fmt.Sprintf("Set auto destruction timer to %d s", seconds))
}

// autoConfigCommand toggles the invoking user's standing
// auto-translation preference in the guild.
type autoConfigCommand struct {
	cfg     *Config
	store   *guildconfig.Store
	catalog *translation.Catalog
}

func (c *autoConfigCommand) pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(c.cfg.configPrefix()) + `auto\b`)
}

func (c *autoConfigCommand) Match(input sarah.Input) bool {
	i, ok := input.(*Input)
	return ok && i.GuildID() != "" && c.pattern().MatchString(i.Message())
}

func (c *autoConfigCommand) Execute(_ context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	i, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("%T is not a *translator.Input", input)
	}

	parts := strings.Fields(i.Message())
	if len(parts) < 2 || (parts[1] != "on" && parts[1] != "off") {
		return NewResponse(input, fmt.Sprintf("Usage: %sauto on|off [language code]", c.cfg.configPrefix()))
	}
	requested := parts[1] == "on"

	current, _ := c.store.UserPref(i.GuildID(), i.UserID())
	code := current.TargetLangCode
	if len(parts) > 2 {
		code = strings.ToLower(parts[2])
		if !c.catalog.Has(code) {
			return NewResponse(input, fmt.Sprintf("Unrecognized language code %s", parts[2]))
		}
	}

	pref := guildconfig.NewUserPref(requested, code, c.catalog.Has)
	if err := c.store.SetUserPref(i.GuildID(), i.UserID(), pref); err != nil {
		logger.Errorf("Failed to persist auto-translation preference for user %s in guild %s: %+v", i.UserID(), i.GuildID(), err)
		return NewResponse(input, "Failed to save the setting. Please try again.")
	}

	if requested && !pref.Active {
		return NewResponse(input, fmt.Sprintf("Set a target language first: %sauto on <language code>", c.cfg.configPrefix()))
	}

	state := "off"
	if pref.Active {
		state = "on"
	}
	if pref.TargetLangCode == "" {
		return NewResponse(input, fmt.Sprintf("Turned %s translation for %s", state, displayName(i.Event.Message)))
	}
	name, _ := c.catalog.Name(pref.TargetLangCode)
	return NewResponse(input, fmt.Sprintf("Turned %s translation to %s for %s", state, name, displayName(i.Event.Message)))
}

// manualTranslateCommand serves one-off translation requests: the
// translate prefix followed by a two-letter language code and a space.
type manualTranslateCommand struct {
	cfg     *Config
	gw      Translator
	catalog *translation.Catalog
}

func (c *manualTranslateCommand) pattern() *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(c.cfg.TranslatePrefix) + `([a-z]{2})\s`)
}

func (c *manualTranslateCommand) Match(input sarah.Input) bool {
	i, ok := input.(*Input)
	return ok && c.pattern().MatchString(i.Message())
}

func (c *manualTranslateCommand) Execute(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	i, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("%T is not a *translator.Input", input)
	}

	match := c.pattern().FindStringSubmatch(i.Message())
	if match == nil {
		return nil, nil
	}

	code := match[1]
	if !c.catalog.Has(code) {
		return NewResponse(input, fmt.Sprintf("Unrecognized language code %s", code))
	}

	body := strings.TrimSpace(i.Message()[len(c.cfg.TranslatePrefix)+2:])
	translated, err := c.gw.Translate(ctx, body, code)
	if errors.Is(err, translation.ErrNoTranslationNeeded) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to translate message %s: %w", i.Event.ID, err)
	}

	return NewReplyResponse(input, translated)
}

// autoTranslateCommand translates every message from a user whose
// standing preference is active. It claims a message only when such a
// preference exists, so unrelated messages fall through untouched.
type autoTranslateCommand struct {
	store *guildconfig.Store
	gw    Translator
}

func (c *autoTranslateCommand) Match(input sarah.Input) bool {
	i, ok := input.(*Input)
	if !ok || i.GuildID() == "" {
		return false
	}

	pref, ok := c.store.UserPref(i.GuildID(), i.UserID())
	return ok && pref.Active
}

func (c *autoTranslateCommand) Execute(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
	i, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("%T is not a *translator.Input", input)
	}

	pref, ok := c.store.UserPref(i.GuildID(), i.UserID())
	if !ok || !pref.Active {
		return nil, nil
	}

	translated, err := c.gw.Translate(ctx, i.Message(), pref.TargetLangCode)
	if errors.Is(err, translation.ErrNoTranslationNeeded) {
		// The message is handled, but no reply is warranted.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to auto-translate message %s: %w", i.Event.ID, err)
	}

	return NewReplyResponse(input, translated)
}

// displayName returns the author's guild nickname when set, falling
// back to the account name.
func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	return m.Author.Username
}
