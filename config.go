package translator

import "github.com/bwmarrin/discordgo"

// Config contains configuration variables for the translator bot.
type Config struct {
	// Token is the Discord bot token used for authentication.
	Token string `json:"token" yaml:"token"`

	// TranslatePrefix marks a one-off translation request: the prefix
	// immediately followed by a two-letter language code and a space,
	// e.g. "?fr bonjour" with the default prefix.
	TranslatePrefix string `json:"translate_prefix" yaml:"translate_prefix"`

	// ConfigPrefix marks administrative commands such as timeout and
	// auto. When empty, "tr" + TranslatePrefix is used, matching the
	// translate prefix convention.
	ConfigPrefix string `json:"config_prefix" yaml:"config_prefix"`

	// StorePath is the location of the guild settings document.
	StorePath string `json:"store_path" yaml:"store_path"`

	// FlagsPath is the location of the flag emoji definitions.
	FlagsPath string `json:"flags_path" yaml:"flags_path"`

	// HelpCommand is the command string that triggers help.
	// When a user sends this exact string, the input is converted to sarah.HelpInput.
	HelpCommand string `json:"help_command" yaml:"help_command"`

	// AbortCommand is the command string that triggers context cancellation.
	// When a user sends this exact string, the input is converted to sarah.AbortInput.
	AbortCommand string `json:"abort_command" yaml:"abort_command"`

	// Intents declares the Gateway Intents the bot requires.
	Intents discordgo.Intent `json:"intents" yaml:"intents"`
}

// NewConfig creates and returns a new Config instance with default settings.
// Token is empty and must be set before use.
func NewConfig() *Config {
	return &Config{
		Token:           "",
		TranslatePrefix: "?",
		ConfigPrefix:    "",
		StorePath:       "db.json",
		FlagsPath:       "flags.json",
		HelpCommand:     ".help",
		AbortCommand:    ".abort",
		Intents: discordgo.IntentsGuildMessages |
			discordgo.IntentsGuildMessageReactions |
			discordgo.IntentsDirectMessages |
			discordgo.IntentsMessageContent,
	}
}

// configPrefix returns ConfigPrefix, falling back to the derived
// default of "tr" + TranslatePrefix.
func (c *Config) configPrefix() string {
	if c.ConfigPrefix != "" {
		return c.ConfigPrefix
	}
	return "tr" + c.TranslatePrefix
}
