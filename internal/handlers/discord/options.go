package discord

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// commandOptions indexes the options of one subcommand by name
type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	out := make(commandOptions, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

// String returns a trimmed string option, or "" when it was not given
func (o commandOptions) String(name string) string {
	opt, ok := o[name]
	if !ok || opt == nil {
		return ""
	}
	if v, ok := opt.Value.(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Int returns an integer option. Discord delivers numbers as float64.
func (o commandOptions) Int(name string) (int, bool) {
	opt, ok := o[name]
	if !ok || opt == nil {
		return 0, false
	}

	switch v := opt.Value.(type) {
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Bool returns a boolean option, false when it was not given
func (o commandOptions) Bool(name string) bool {
	opt, ok := o[name]
	if !ok || opt == nil {
		return false
	}
	v, _ := opt.Value.(bool)
	return v
}
