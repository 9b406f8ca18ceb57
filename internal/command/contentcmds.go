package command

import (
	"strings"

	"whatsbot/internal/content"
)

func init() {
	Register(&Command{
		Sort:        16,
		Name:        "quote",
		Category:    catCore,
		Description: "Random quote",
		Handler: func(c *Context) error {
			return c.Reply("💬 " + c.Content.Quotes.Pick())
		},
	})
	Register(&Command{
		Sort:        17,
		Name:        "joke",
		Category:    catCore,
		Description: "Random joke",
		Handler: func(c *Context) error {
			return c.Reply("😄 " + c.Content.Jokes.Pick())
		},
	})
	Register(&Command{
		Sort:        18,
		Name:        "fact",
		Category:    catCore,
		Description: "Random fact",
		Handler: func(c *Context) error {
			return c.Reply("🧠 " + c.Content.Facts.Pick())
		},
	})

	Register(&Command{
		Sort:        40,
		Name:        "addquote",
		Category:    catContent,
		Description: "Add a quote",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			return addContent(c, c.Content.Quotes, "addquote", "your quote", "Quote")
		},
	})
	Register(&Command{
		Sort:        41,
		Name:        "addjoke",
		Category:    catContent,
		Description: "Add a joke",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			return addContent(c, c.Content.Jokes, "addjoke", "your joke", "Joke")
		},
	})
	Register(&Command{
		Sort:        42,
		Name:        "addfact",
		Category:    catContent,
		Description: "Add a fact",
		Authority:   AuthorityOwner,
		Handler: func(c *Context) error {
			return addContent(c, c.Content.Facts, "addfact", "your fact", "Fact")
		},
	})
}

func addContent(c *Context, list *content.List, name, placeholder, label string) error {
	if c.Args == "" {
		return c.Reply("Usage: " + c.Prefix + name + " <" + placeholder + ">")
	}
	if err := list.Append(c.Args); err != nil {
		c.Log.Error().Err(err).Str("command", name).Msg("content append failed")
		return c.Reply("❌ Failed to add " + strings.ToLower(label) + ".")
	}
	return c.Reply("✅ " + label + " added!")
}
