package command

import "fmt"

func init() {
	Register(&Command{
		Sort:        19,
		Name:        "delete",
		Aliases:     []string{"del"},
		Category:    catCore,
		Description: "Delete the replied-to message or the bot's own",
		Handler:     deleteHandler,
	})
}

// deleteHandler revokes the quoted message when there is one; a message from
// the bot's own account revokes itself. Whether a revoke of someone else's
// message takes effect is the server's call (it requires group-admin status),
// not enforced here.
func deleteHandler(c *Context) error {
	ref := c.Msg.Ref
	switch {
	case c.Msg.Quoted != nil:
		ref = c.Msg.Quoted.Ref
	case c.Msg.FromSelf:
	default:
		return c.Reply("Nothing to delete (reply to a message).")
	}

	if err := c.Client.DeleteMessage(c.Ctx, ref); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
