package command

import (
	"fmt"
	"math/rand"
)

func init() {
	Register(&Command{
		Sort:        14,
		Name:        "roll",
		Aliases:     []string{"dice"},
		Category:    catCore,
		Description: "Roll a six-sided die",
		Handler: func(c *Context) error {
			return c.Reply(fmt.Sprintf("🎲 %d", rand.Intn(6)+1))
		},
	})
}
