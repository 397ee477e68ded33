// /home/krylon/go/src/github.com/blicero/asklepios/channel/chat.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-05 23:55:12 krylon>

package channel

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatChannel delivers notifications through a Telegram bot. The
// Companion's ChatID is established out of band, by the linking flow
// in the mobile app; a Companion with ChatID 0 is simply not
// reachable here.
type ChatChannel struct {
	log *log.Logger
	bot *tgbotapi.BotAPI
}

// NewChatChannel creates a ChatChannel from a bot token. The timeout
// bounds every API call; the bot library's default client has none,
// and a hung provider must not stall a dispatch batch.
func NewChatChannel(token string, timeout time.Duration) (*ChatChannel, error) {
	var (
		err error
		ch  = new(ChatChannel)
	)

	var client = &http.Client{Timeout: timeout}

	if ch.log, err = common.GetLogger(logdomain.Channel); err != nil {
		return nil, err
	} else if ch.bot, err = tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client); err != nil {
		ch.log.Printf("[ERROR] Cannot create Telegram bot: %s\n",
			err.Error())
		return nil, err
	}

	ch.log.Printf("[INFO] Chat channel is authorized as %s\n",
		ch.bot.Self.UserName)

	return ch, nil
} // func NewChatChannel(token string, timeout time.Duration) (*ChatChannel, error)

// Name returns the channel name.
func (ch *ChatChannel) Name() string {
	return Chat
} // func (ch *ChatChannel) Name() string

// CanReach returns true if the Companion has a linked chat identity.
func (ch *ChatChannel) CanReach(c *objects.Companion) bool {
	return c.ChatID != 0
} // func (ch *ChatChannel) CanReach(c *objects.Companion) bool

// Send delivers the message to the Companion's chat.
func (ch *ChatChannel) Send(ctx context.Context, rcpt *objects.Companion, msg *objects.Message) (Result, error) {
	var res Result

	if err := ctx.Err(); err != nil {
		return res, err
	}

	var tmsg = tgbotapi.NewMessage(
		rcpt.ChatID,
		fmt.Sprintf("%s\n%s",
			msg.Title,
			msg.Body))

	if _, err := ch.bot.Send(tmsg); err != nil {
		ch.log.Printf("[ERROR] Cannot send chat message to %d: %s\n",
			rcpt.ChatID,
			err.Error())
		return res, err
	}

	return res, nil
} // func (ch *ChatChannel) Send(...) (Result, error)
