package discord

import (
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultDeferAfter leaves a margin under Discord's three second limit on
// the first interaction response
const DefaultDeferAfter = 2 * time.Second

// interactionSession is the part of the Discord session that answers interactions
type interactionSession interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// ack describes how an interaction is acknowledged when its reply is late
type ack struct {
	ephemeral bool
	// update acknowledges a button press by holding on to the message it sits on
	update bool
}

// responder answers one interaction, either directly or as a deferral followed by an edit
type responder struct {
	session     interactionSession
	interaction *discordgo.Interaction
	deferred    *ack
}

func newResponder(s interactionSession, i *discordgo.InteractionCreate) *responder {
	return &responder{session: s, interaction: i.Interaction}
}

// Defer acknowledges the interaction so the reply can follow later
func (r *responder) Defer(a ack) error {
	if r.deferred != nil {
		return fmt.Errorf("interaction already deferred")
	}

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{},
	}
	if a.update {
		response.Type = discordgo.InteractionResponseDeferredMessageUpdate
	} else if a.ephemeral {
		response.Data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := r.session.InteractionRespond(r.interaction, response); err != nil {
		return err
	}
	r.deferred = &a
	return nil
}

// Respond sends the reply. After a deferral it edits the deferred response,
// unless the deferral kept a message the reply does not replace.
func (r *responder) Respond(rep *reply) error {
	components := rep.components
	// An update has to clear the buttons it answered
	if rep.update && components == nil {
		components = []discordgo.MessageComponent{}
	}

	switch {
	case r.deferred == nil:
		return r.respond(rep, components)
	case r.deferred.update && !rep.update:
		return r.followUp(rep, components)
	default:
		return r.edit(rep, components)
	}
}

func (r *responder) respond(rep *reply, components []discordgo.MessageComponent) error {
	responseType := discordgo.InteractionResponseChannelMessageWithSource
	if rep.update {
		responseType = discordgo.InteractionResponseUpdateMessage
	}

	data := &discordgo.InteractionResponseData{
		Content:    rep.content,
		Embeds:     rep.embeds,
		Components: components,
	}
	if rep.ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	return r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: data,
	})
}

func (r *responder) edit(rep *reply, components []discordgo.MessageComponent) error {
	content := rep.content
	embeds := rep.embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	_, err := r.session.InteractionResponseEdit(r.interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

func (r *responder) followUp(rep *reply, components []discordgo.MessageComponent) error {
	params := &discordgo.WebhookParams{
		Content:    rep.content,
		Embeds:     rep.embeds,
		Components: components,
	}
	if rep.ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, true, params)
	return err
}

// answer runs the work and replies with its result. Work that outlives
// deferAfter gets the interaction deferred first.
func (h *Handler) answer(s interactionSession, i *discordgo.InteractionCreate, a ack, work func() *reply) {
	r := newResponder(s, i)

	done := make(chan *reply, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Printf("PANIC answering interaction: %v\nStack trace:\n%s", p, debug.Stack())
				done <- &reply{content: "❌ " + h.localizer.Localize("CN.DISCORD.ERROR"), ephemeral: true}
			}
		}()
		done <- work()
	}()

	var rep *reply
	timer := time.NewTimer(h.deferAfter)
	defer timer.Stop()

	select {
	case rep = <-done:
	case <-timer.C:
		if err := r.Defer(a); err != nil {
			log.Printf("[DISCORD] Failed to defer interaction: %v", err)
		}
		rep = <-done
	}

	if err := r.Respond(rep); err != nil {
		log.Printf("[DISCORD] Failed to respond to interaction: %v", err)
	}
}
