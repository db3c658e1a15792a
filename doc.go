// Package translator implements a Discord bot that translates chat
// messages: on demand via a message prefix, automatically per user once
// enabled with a configuration command, and in response to flag emoji
// reactions with an optional delayed cleanup.
//
// The integration is built on the go-sarah bot framework with discordgo
// for the underlying API access. The Adapter in this package converts
// Discord events into sarah inputs, CommandProps returns the bot's
// commands in dispatch priority order, and ReactionEngine handles
// reaction-added events outside the command chain.
package translator
