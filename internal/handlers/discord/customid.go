package discord

import (
	"fmt"
	"strings"
)

const customIDPrefix = "conc"

// Component actions
const (
	ActionSave          = "save"
	ActionDelete        = "delete"
	ActionDeleteConfirm = "delete_confirm"
	ActionKeep          = "keep"
	ActionEndConfirm    = "end_confirm"
)

// CustomID is the parsed form of a button's custom id, conc:<action>:<target>
type CustomID struct {
	Action string
	Target string // Message id for save request buttons, actor id for end buttons
}

func (c CustomID) String() string {
	return fmt.Sprintf("%s:%s:%s", customIDPrefix, c.Action, c.Target)
}

// ParseCustomID splits a custom id. It reports false for ids this bot did not create.
func ParseCustomID(raw string) (CustomID, bool) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix || parts[1] == "" || parts[2] == "" {
		return CustomID{}, false
	}
	return CustomID{Action: parts[1], Target: parts[2]}, true
}
