package publish

import (
	"context"
	"log/slog"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/bazumi/promobot/core/logger"
	"github.com/bazumi/promobot/core/telegram/sender"
	"github.com/bazumi/promobot/internal/store"
)

// SendAPI is the single call the broadcaster needs.
type SendAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Broadcaster fans an announcement out to every known user through the
// outbound dispatcher. Per-recipient failures (blocked bot, deleted
// account) are counted, never propagated: one dead recipient must not
// stop the rest of the run.
type Broadcaster struct {
	api        SendAPI
	dispatcher *sender.Dispatcher
}

func NewBroadcaster(api SendAPI, dispatcher *sender.Dispatcher) *Broadcaster {
	return &Broadcaster{api: api, dispatcher: dispatcher}
}

// Broadcast sends the announcement to each recipient and blocks until
// every delivery settled. It returns sent and failed counts.
func (b *Broadcaster) Broadcast(ctx context.Context, a *store.Announcement, caption string, recipients []int64) (sent, failed int) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, userID := range recipients {
		photo := &tele.Photo{
			File:    tele.File{FileID: a.MediaRef},
			Caption: caption,
		}
		to := tele.ChatID(userID)
		wg.Add(1)
		job := sender.Job{
			Label:  "announce",
			UserID: userID,
			Fn: func() error {
				_, err := b.api.Send(to, photo, &tele.SendOptions{ParseMode: tele.ModeHTML})
				return err
			},
			OnDone: func(err error) {
				mu.Lock()
				if err != nil {
					failed++
				} else {
					sent++
				}
				mu.Unlock()
				wg.Done()
			},
		}
		if err := b.dispatcher.Enqueue(job); err != nil {
			// Queue saturated or shutting down: deliver inline so the
			// fan-out still completes.
			job.OnDone(job.Fn())
		}
	}
	wg.Wait()

	logger.Info(ctx, "publish", "broadcast_done",
		slog.Int64("announcement_id", a.ID),
		slog.Int("recipients", len(recipients)),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	return sent, failed
}
