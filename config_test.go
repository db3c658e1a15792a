package translator

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	if config.Token != "" {
		t.Errorf("Expected empty token, got %q", config.Token)
	}

	if config.TranslatePrefix != "?" {
		t.Errorf("Expected TranslatePrefix to be %q, got %q", "?", config.TranslatePrefix)
	}

	if config.ConfigPrefix != "" {
		t.Errorf("Expected ConfigPrefix to be empty, got %q", config.ConfigPrefix)
	}

	if config.StorePath != "db.json" {
		t.Errorf("Expected StorePath to be %q, got %q", "db.json", config.StorePath)
	}

	if config.FlagsPath != "flags.json" {
		t.Errorf("Expected FlagsPath to be %q, got %q", "flags.json", config.FlagsPath)
	}

	if config.HelpCommand != ".help" {
		t.Errorf("Expected HelpCommand to be %q, got %q", ".help", config.HelpCommand)
	}

	if config.AbortCommand != ".abort" {
		t.Errorf("Expected AbortCommand to be %q, got %q", ".abort", config.AbortCommand)
	}

	expectedIntents := discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	if config.Intents != expectedIntents {
		t.Errorf("Expected Intents to be %d, got %d", expectedIntents, config.Intents)
	}
}

func TestConfig_configPrefix(t *testing.T) {
	t.Run("derived from the translate prefix", func(t *testing.T) {
		config := NewConfig()

		if prefix := config.configPrefix(); prefix != "tr?" {
			t.Errorf("Expected derived prefix %q, got %q", "tr?", prefix)
		}
	})

	t.Run("explicit override wins", func(t *testing.T) {
		config := NewConfig()
		config.ConfigPrefix = "!cfg "

		if prefix := config.configPrefix(); prefix != "!cfg " {
			t.Errorf("Expected explicit prefix %q, got %q", "!cfg ", prefix)
		}
	})
}
