// /home/krylon/go/src/github.com/blicero/asklepios/channel/mail.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-06 00:19:34 krylon>

package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net"
	"net/smtp"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
)

// MailChannel delivers notifications by email, over SMTP with
// implicit TLS (port 465).
type MailChannel struct {
	log      *log.Logger
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewMailChannel creates a MailChannel.
func NewMailChannel(host string, port int, user, password, from string) (*MailChannel, error) {
	var (
		err error
		ch  = &MailChannel{
			host:     host,
			port:     port,
			user:     user,
			password: password,
			from:     from,
		}
	)

	if ch.from == "" {
		ch.from = user
	}

	if ch.log, err = common.GetLogger(logdomain.Channel); err != nil {
		return nil, err
	}

	return ch, nil
} // func NewMailChannel(...) (*MailChannel, error)

// Name returns the channel name.
func (ch *MailChannel) Name() string {
	return Email
} // func (ch *MailChannel) Name() string

// CanReach returns true if the Companion has an email address on file.
func (ch *MailChannel) CanReach(c *objects.Companion) bool {
	return c.Email != ""
} // func (ch *MailChannel) CanReach(c *objects.Companion) bool

// Send delivers the message to the Companion's email address.
func (ch *MailChannel) Send(ctx context.Context, rcpt *objects.Companion, msg *objects.Message) (Result, error) {
	var (
		err  error
		res  Result
		conn net.Conn
	)

	var body = fmt.Sprintf("From: %s <%s>\r\n", common.AppName, ch.from) +
		fmt.Sprintf("To: %s\r\n", rcpt.Email) +
		fmt.Sprintf("Subject: %s\r\n", msg.Title) +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"utf-8\"\r\n" +
		"\r\n" +
		fmt.Sprintf("<html><body><p>%s</p></body></html>\r\n", msg.Body)

	var (
		addr   = fmt.Sprintf("%s:%d", ch.host, ch.port)
		dialer = tls.Dialer{
			Config: &tls.Config{
				ServerName: ch.host,
			},
		}
	)

	if conn, err = dialer.DialContext(ctx, "tcp", addr); err != nil {
		ch.log.Printf("[ERROR] Cannot connect to SMTP server %s: %s\n",
			addr,
			err.Error())
		return res, err
	}

	defer conn.Close() // nolint: errcheck

	// The dial respects ctx, the SMTP conversation after it would not;
	// the connection deadline covers the rest of the exchange.
	if deadline, ok := ctx.Deadline(); ok {
		if err = conn.SetDeadline(deadline); err != nil {
			ch.log.Printf("[ERROR] Cannot set deadline on SMTP connection: %s\n",
				err.Error())
			return res, err
		}
	}

	var client *smtp.Client

	if client, err = smtp.NewClient(conn, ch.host); err != nil {
		ch.log.Printf("[ERROR] Cannot talk SMTP to %s: %s\n",
			addr,
			err.Error())
		return res, err
	}

	defer client.Quit() // nolint: errcheck

	var auth = smtp.PlainAuth("", ch.user, ch.password, ch.host)

	if err = client.Auth(auth); err != nil {
		ch.log.Printf("[ERROR] SMTP authentication failed: %s\n",
			err.Error())
		return res, err
	} else if err = client.Mail(ch.from); err != nil {
		return res, err
	} else if err = client.Rcpt(rcpt.Email); err != nil {
		return res, err
	}

	var wc io.WriteCloser

	if wc, err = client.Data(); err != nil {
		return res, err
	} else if _, err = wc.Write([]byte(body)); err != nil {
		wc.Close() // nolint: errcheck
		return res, err
	} else if err = wc.Close(); err != nil {
		return res, err
	}

	return res, nil
} // func (ch *MailChannel) Send(...) (Result, error)
