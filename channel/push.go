// /home/krylon/go/src/github.com/blicero/asklepios/channel/push.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 02. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-03-05 23:40:41 krylon>

package channel

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/blicero/asklepios/common"
	"github.com/blicero/asklepios/logdomain"
	"github.com/blicero/asklepios/objects"
	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/pquerna/ffjson/ffjson"
)

// PushChannel delivers notifications via Web Push (RFC 8030) with
// VAPID. A Companion may have several subscriptions (one per browser
// or device); a send counts as successful if at least one of them
// accepts the message.
type PushChannel struct {
	log     *log.Logger
	public  string
	private string
	subject string
}

// NewPushChannel creates a PushChannel from a VAPID key pair.
func NewPushChannel(public, private, subject string) (*PushChannel, error) {
	var (
		err error
		ch  = &PushChannel{
			public:  public,
			private: private,
			subject: subject,
		}
	)

	if ch.log, err = common.GetLogger(logdomain.Channel); err != nil {
		return nil, err
	}

	return ch, nil
} // func NewPushChannel(public, private, subject string) (*PushChannel, error)

// Name returns the channel name.
func (ch *PushChannel) Name() string {
	return Push
} // func (ch *PushChannel) Name() string

// CanReach returns true if the Companion has at least one registered
// subscription.
func (ch *PushChannel) CanReach(c *objects.Companion) bool {
	return len(c.Subscriptions) > 0
} // func (ch *PushChannel) CanReach(c *objects.Companion) bool

// Send pushes the message to every subscription the Companion has
// registered. Endpoints the push service reports as permanently dead
// (HTTP 404/410) are returned in the Result so the caller can
// deregister them.
func (ch *PushChannel) Send(ctx context.Context, rcpt *objects.Companion, msg *objects.Message) (Result, error) {
	var (
		err     error
		payload []byte
		res     Result
	)

	if payload, err = ffjson.Marshal(msg); err != nil {
		ch.log.Printf("[CANTHAPPEN] Cannot serialize Message: %s\n",
			err.Error())
		return res, err
	}

	defer ffjson.Pool(payload)

	var (
		delivered int
		lastErr   error
		options   = webpush.Options{
			Subscriber:      ch.subject,
			VAPIDPublicKey:  ch.public,
			VAPIDPrivateKey: ch.private,
			TTL:             300,
		}
	)

	for _, sub := range rcpt.Subscriptions {
		var (
			resp *http.Response
			wsub = webpush.Subscription{
				Endpoint: sub.Endpoint,
				Keys: webpush.Keys{
					P256dh: sub.P256dh,
					Auth:   sub.Auth,
				},
			}
		)

		if resp, err = webpush.SendNotificationWithContext(ctx, payload, &wsub, &options); err != nil {
			ch.log.Printf("[ERROR] Cannot push to %s: %s\n",
				sub.Endpoint,
				err.Error())
			lastErr = err
			continue
		}

		resp.Body.Close() // nolint: errcheck

		switch {
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			ch.log.Printf("[INFO] Push endpoint %s is gone (HTTP %d)\n",
				sub.Endpoint,
				resp.StatusCode)
			res.Gone = append(res.Gone, sub.Endpoint)
			lastErr = &GoneError{Endpoint: sub.Endpoint, Code: resp.StatusCode}
		case resp.StatusCode >= 400:
			lastErr = fmt.Errorf("push service returned HTTP %d for %s",
				resp.StatusCode,
				sub.Endpoint)
			ch.log.Printf("[ERROR] %s\n", lastErr.Error())
		default:
			delivered++
		}
	}

	if delivered == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("Companion %q has no push subscriptions",
				rcpt.Name)
		}
		return res, lastErr
	}

	return res, nil
} // func (ch *PushChannel) Send(...) (Result, error)
