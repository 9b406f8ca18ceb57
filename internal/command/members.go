package command

import (
	"fmt"

	"whatsbot/internal/mention"
	"whatsbot/internal/transport"
)

func init() {
	Register(&Command{
		Sort:        31,
		Name:        "kick",
		Category:    catAdmin,
		Description: "Remove mentioned users",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler:     memberAction(transport.ParticipantRemove, "kick"),
	})
	Register(&Command{
		Sort:        32,
		Name:        "promote",
		Category:    catAdmin,
		Description: "Promote mentioned users to admin",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler:     memberAction(transport.ParticipantPromote, "promote"),
	})
	Register(&Command{
		Sort:        33,
		Name:        "demote",
		Category:    catAdmin,
		Description: "Demote mentioned admins",
		Authority:   AuthorityGroupAdmin,
		GroupOnly:   true,
		Handler:     memberAction(transport.ParticipantDemote, "demote"),
	})
}

// memberAction builds a handler mutating group membership for every user the
// message mentions, by tag, transport metadata, or reply.
func memberAction(action transport.ParticipantAction, verb string) HandlerFunc {
	return func(c *Context) error {
		targets := mention.Extract(c.Msg, c.Args)
		if len(targets) == 0 {
			return c.Reply("Mention users to " + verb + ".")
		}
		if err := c.Client.UpdateParticipants(c.Ctx, c.Msg.Chat, targets, action); err != nil {
			return fmt.Errorf("%s participants: %w", verb, err)
		}
		return nil
	}
}
