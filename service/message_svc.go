package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Roberadesissai/workout-tracker-sub000/auth"
	"github.com/Roberadesissai/workout-tracker-sub000/minio"
	"github.com/Roberadesissai/workout-tracker-sub000/realtime"
	"github.com/Roberadesissai/workout-tracker-sub000/types"
	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/nicolasparada/go-errs"
)

var ErrMessagingNotAllowed = errs.PermissionDeniedError("messaging not allowed")

// MessageEvent is a live change to a message row, scoped to one
// participant's stream.
type MessageEvent struct {
	Type    realtime.EventType `json:"type"`
	Message types.Message      `json:"message"`
}

// SendMessage gates on the relationship, stores the message and fans
// it out. Media uploads happen before the insert; a failed insert
// removes the uploaded object.
func (svc *Service) SendMessage(ctx context.Context, in types.SendMessage) (types.Message, error) {
	var out types.Message

	if err := in.Validate(); err != nil {
		return out, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	recipient, err := svc.Cockroach.Profile(ctx, types.RetrieveProfile{ProfileID: in.RecipientID})
	if err != nil {
		return out, err
	}

	allowed, err := svc.canMessage(ctx, user.ID, recipient)
	if err != nil {
		return out, err
	}

	if !allowed {
		return out, ErrMessagingNotAllowed
	}

	var mediaURL *string
	cleanup := func() {}
	if in.Media != nil {
		attachment, err := readImageAttachment(in.Media)
		if err != nil {
			return out, err
		}

		cleanup, err = svc.Minio.Upload(ctx, minio.BucketMessageMedia, attachment)
		if err != nil {
			return out, fmt.Errorf("upload message media: %w", err)
		}

		url := svc.mediaURLPrefix + minio.BucketMessageMedia + "/" + attachment.Path
		mediaURL = &url
	}

	out, err = svc.Cockroach.CreateMessage(ctx, in, mediaURL)
	if err != nil {
		go cleanup()
		return out, err
	}

	svc.background(func(ctx context.Context) error {
		return svc.publishMessageEvent(realtime.EventInsert, out)
	})

	if !recipient.IsOnline {
		svc.background(func(ctx context.Context) error {
			return svc.pushMessageNotification(ctx, user, out)
		})
	}

	return out, nil
}

// Thread returns the full history with the counterpart, oldest first.
// Unread inbound messages flip to read in the same transaction, and
// their senders learn about it through update events.
func (svc *Service) Thread(ctx context.Context, in types.RetrieveThread) ([]types.Message, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	msgs, read, err := svc.Cockroach.ThreadWithReadReceipts(ctx, user.ID, in.CounterpartID)
	if err != nil {
		return nil, err
	}

	svc.background(func(ctx context.Context) error {
		for _, msg := range read {
			if err := svc.publishMessageEvent(realtime.EventUpdate, msg); err != nil {
				return err
			}
		}

		return nil
	})

	return msgs, nil
}

// MarkThreadRead acknowledges a thread without fetching it, for
// clients that already hold the messages.
func (svc *Service) MarkThreadRead(ctx context.Context, in types.MarkThreadRead) error {
	if err := in.Validate(); err != nil {
		return err
	}

	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetLoggedInUserID(user.ID)

	read, err := svc.Cockroach.MarkThreadRead(ctx, user.ID, in.CounterpartID)
	if err != nil {
		return err
	}

	svc.background(func(ctx context.Context) error {
		for _, msg := range read {
			if err := svc.publishMessageEvent(realtime.EventUpdate, msg); err != nil {
				return err
			}
		}

		return nil
	})

	return nil
}

// MessageStream delivers live message changes for the logged-in user
// until ctx is done.
func (svc *Service) MessageStream(ctx context.Context) (<-chan MessageEvent, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	out := make(chan MessageEvent)
	unsub, err := svc.Broker.Sub(realtime.MessagesTopic(user.ID), func(ev realtime.Event) {
		msg, err := realtime.DecodeRow[types.Message](ev)
		if err != nil {
			_ = svc.Logger.Log("err", fmt.Errorf("decode message event: %w", err))
			return
		}

		select {
		case out <- MessageEvent{Type: ev.Type, Message: msg}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to message stream: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := unsub(); err != nil {
			_ = svc.Logger.Log("err", fmt.Errorf("unsubscribe from message stream: %w", err))
		}

		close(out)
	}()

	return out, nil
}

// publishMessageEvent delivers the change to both participants.
func (svc *Service) publishMessageEvent(typ realtime.EventType, msg types.Message) error {
	ev, err := realtime.NewEvent(typ, "messages", msg)
	if err != nil {
		return err
	}

	if err := svc.Broker.Pub(realtime.MessagesTopic(msg.SenderID), ev); err != nil {
		return err
	}

	return svc.Broker.Pub(realtime.MessagesTopic(msg.RecipientID), ev)
}

func (svc *Service) pushMessageNotification(ctx context.Context, sender types.Profile, msg types.Message) error {
	subs, err := svc.Cockroach.PushSubscriptions(ctx, msg.RecipientID)
	if err != nil {
		return err
	}

	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"title": sender.Name(),
		"body":  msg.Content,
	})
	if err != nil {
		return fmt.Errorf("json marshal push payload: %w", err)
	}

	for _, sub := range subs {
		resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}, &webpush.Options{
			Subscriber:      svc.pushContact,
			VAPIDPublicKey:  svc.vapidPublicKey,
			VAPIDPrivateKey: svc.vapidPrivateKey,
			TTL:             60,
		})
		if err != nil {
			_ = svc.Logger.Log("err", fmt.Errorf("send push notification: %w", err))
			continue
		}

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := svc.Cockroach.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				_ = svc.Logger.Log("err", fmt.Errorf("delete dead push subscription: %w", err))
			}
		}

		_ = resp.Body.Close()
	}

	return nil
}
