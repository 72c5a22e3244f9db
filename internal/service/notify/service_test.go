package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/Temutjin2k/campus-ride/internal/adapter/memory"
	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	"github.com/google/uuid"
)

type fakePublisher struct {
	published []models.Notification
	err       error
}

func (p *fakePublisher) PublishNotification(_ context.Context, n models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

type fakePusher struct {
	online map[uuid.UUID]bool
	pushed []models.Notification
}

func (p *fakePusher) Push(_ context.Context, n models.Notification) (bool, error) {
	if !p.online[n.RecipientID] {
		return false, nil
	}
	p.pushed = append(p.pushed, n)
	return true, nil
}

func TestNotifyFansOut(t *testing.T) {
	store := memory.NewNotificationStore()
	pub := &fakePublisher{}
	online := uuid.New()
	push := &fakePusher{online: map[uuid.UUID]bool{online: true}}
	svc := New(store, pub, push, logger.Discard())
	ctx := context.Background()

	offline := uuid.New()
	for _, recipient := range []uuid.UUID{online, offline} {
		err := svc.Notify(ctx, models.Notification{
			RecipientID: recipient,
			SenderID:    uuid.New(),
			Type:        types.NotificationOffer,
			Message:     "Driver responded to your ride request with a fare offer of $9.00",
		})
		if err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	if len(pub.published) != 2 {
		t.Fatalf("published %d, want 2", len(pub.published))
	}
	if len(push.pushed) != 1 || push.pushed[0].RecipientID != online {
		t.Fatalf("pushed %+v, want one to the online recipient", push.pushed)
	}
	if pub.published[0].ID == uuid.Nil || pub.published[0].CreatedAt.IsZero() {
		t.Fatalf("notification id or timestamp not assigned: %+v", pub.published[0])
	}

	count, err := svc.UnreadCount(ctx, offline)
	if err != nil || count != 1 {
		t.Fatalf("UnreadCount = %d, %v; want 1", count, err)
	}
}

func TestNotifyBrokerFailureIsNotReturned(t *testing.T) {
	svc := New(memory.NewNotificationStore(), &fakePublisher{err: errors.New("broker down")}, nil, logger.Discard())

	if err := svc.Notify(context.Background(), models.Notification{RecipientID: uuid.New()}); err != nil {
		t.Fatalf("Notify returned %v", err)
	}
}

func TestReadState(t *testing.T) {
	svc := New(memory.NewNotificationStore(), nil, nil, logger.Discard())
	ctx := context.Background()
	me, someone := uuid.New(), uuid.New()

	for range 3 {
		if err := svc.Notify(ctx, models.Notification{RecipientID: me, Type: types.NotificationRideRequest}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}
	if err := svc.Notify(ctx, models.Notification{RecipientID: someone}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	list, p, err := svc.List(ctx, me, false, models.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || p.Total != 3 {
		t.Fatalf("listed %d of %d, want 3", len(list), p.Total)
	}

	if err := svc.MarkRead(ctx, list[0].ID, someone); !errors.Is(err, types.ErrNotificationNotFound) {
		t.Fatalf("marking someone else's notification: got %v", err)
	}
	if err := svc.MarkRead(ctx, list[0].ID, me); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	unread, _, err := svc.List(ctx, me, true, models.Page{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("unread = %d, want 2", len(unread))
	}

	n, err := svc.MarkAllRead(ctx, me)
	if err != nil || n != 2 {
		t.Fatalf("MarkAllRead = %d, %v; want 2", n, err)
	}
	if count, _ := svc.UnreadCount(ctx, me); count != 0 {
		t.Fatalf("unread after MarkAllRead = %d", count)
	}
	if count, _ := svc.UnreadCount(ctx, someone); count != 1 {
		t.Fatalf("other recipient's unread = %d, want 1", count)
	}
}
