package command

import (
	"fmt"

	"whatsbot/internal/codec"
	"whatsbot/internal/transport"
)

func init() {
	Register(&Command{
		Sort:        12,
		Name:        "sticker",
		Category:    catCore,
		Description: "Convert replied image to sticker",
		Handler:     stickerHandler,
	})
	Register(&Command{
		Sort:        13,
		Name:        "toimg",
		Category:    catCore,
		Description: "Convert replied sticker to image",
		Handler:     toimgHandler,
	})
}

func stickerHandler(c *Context) error {
	img := c.Msg.Image
	if c.Msg.Quoted != nil && c.Msg.Quoted.Image != nil {
		img = c.Msg.Quoted.Image
	}
	if img == nil {
		return c.Reply("Reply to an *image* with " + c.Prefix + "sticker")
	}

	data, err := c.Client.Download(c.Ctx, img)
	if err != nil {
		return fmt.Errorf("download image: %w", err)
	}
	webp, err := codec.ToSticker(data)
	if err != nil {
		c.Log.Error().Err(err).Msg("sticker conversion failed")
		return c.Reply("Error creating sticker. Please try again.")
	}
	return c.Client.SendSticker(c.Ctx, c.Msg.Chat, webp, &transport.SendOpts{Quoted: &c.Msg.Ref})
}

func toimgHandler(c *Context) error {
	stk := c.Msg.Sticker
	if c.Msg.Quoted != nil && c.Msg.Quoted.Sticker != nil {
		stk = c.Msg.Quoted.Sticker
	}
	if stk == nil {
		return c.Reply("Reply to a *sticker* with " + c.Prefix + "toimg")
	}

	data, err := c.Client.Download(c.Ctx, stk)
	if err != nil {
		return fmt.Errorf("download sticker: %w", err)
	}
	png, err := codec.ToImage(data)
	if err != nil {
		c.Log.Error().Err(err).Msg("sticker to image conversion failed")
		return c.Reply("Error converting sticker to image. Please try again.")
	}
	return c.Client.SendImage(c.Ctx, c.Msg.Chat, png, "Here's your image", &transport.SendOpts{Quoted: &c.Msg.Ref})
}
