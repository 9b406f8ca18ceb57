package command

func init() {
	Register(&Command{
		Sort:        60,
		Name:        "google",
		Aliases:     []string{"wiki", "ytmp3", "ytmp4", "weather", "news", "tts", "qr", "readqr", "ss"},
		Category:    catPlaceholder,
		Description: "External integrations (not configured)",
		Handler: func(c *Context) error {
			return c.Reply("🧩 " + c.Prefix + c.Invoked + " requires additional setup. This feature is a placeholder for now.")
		},
	})
}
