package command

import "math/rand"

var eightBallAnswers = []string{
	"Yes.",
	"No.",
	"Absolutely!",
	"Never.",
	"Maybe.",
	"Ask again later.",
	"Definitely not.",
	"It is certain.",
	"Very doubtful.",
	"Without a doubt.",
	"My sources say no.",
	"Signs point to yes.",
}

func init() {
	Register(&Command{
		Sort:        15,
		Name:        "8ball",
		Category:    catCore,
		Description: "Ask the magic 8-ball",
		Handler: func(c *Context) error {
			if c.Args == "" {
				return c.Reply("Ask a question: " + c.Prefix + "8ball Will I pass?")
			}
			return c.Reply("🎱 " + eightBallAnswers[rand.Intn(len(eightBallAnswers))])
		},
	})
}
