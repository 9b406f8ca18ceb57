package command

import (
	"fmt"
	"regexp"
	"strings"
)

// A quoted question followed by slash-separated options:
// poll "Lunch?" pizza / sushi / salad
var pollRegexp = regexp.MustCompile(`"(.+?)"\s+(.+)`)

func init() {
	Register(&Command{
		Sort:        20,
		Name:        "poll",
		Category:    catCore,
		Description: "Create a poll: \"question\" opt1 / opt2",
		Handler:     pollHandler,
	})
}

func pollHandler(c *Context) error {
	usage := "Usage: " + c.Prefix + "poll \"Question\" option1 / option2"

	m := pollRegexp.FindStringSubmatch(c.Args)
	if m == nil {
		return c.Reply(usage)
	}
	question := m[1]

	var options []string
	for _, opt := range strings.Split(m[2], "/") {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < 2 {
		return c.Reply("Provide at least 2 options.\n" + usage)
	}

	if err := c.Client.SendPoll(c.Ctx, c.Msg.Chat, question, options); err != nil {
		return fmt.Errorf("send poll: %w", err)
	}
	return nil
}
