package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"boothnow-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers for sending "booth available" pushes.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*8),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case boothID := <-wp.jobs:
			log.Printf("Worker %d processing booth %s", id, boothID)
			wp.sendNotificationsForBooth(ctx, boothID)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a booth for notification. It never blocks; when the queue
// is full the job is dropped and false is returned.
func (wp *WorkerPool) Dispatch(boothID string) bool {
	select {
	case wp.jobs <- boothID:
		return true
	default:
		log.Printf("Notification queue full, dropping booth %s", boothID)
		return false
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

// Listen dispatches a job for every event that leaves a booth available,
// until events is closed or ctx is done.
func (wp *WorkerPool) Listen(ctx context.Context, events <-chan Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Status == model.OccupancyAvailable {
				wp.Dispatch(ev.BoothID)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) sendNotificationsForBooth(ctx context.Context, boothID string) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_booth_mapping sbm ON sbm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sbm.booth_id = ?", boothID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for booth %s: %v", boothID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for booth %s", len(subscriptions), boothID)

	var booth model.Booth
	boothLabel := boothID
	if err := wp.db.WithContext(ctx).
		Select("name").
		Where("id = ?", boothID).
		First(&booth).Error; err != nil {
		log.Printf("Error fetching booth %s: %v", boothID, err)
	} else if booth.Name != "" {
		boothLabel = booth.Name
	}

	message := fmt.Sprintf("Booth %s is now available!", boothLabel)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		err := wp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM subscription_booth_mapping WHERE push_subscription_endpoint = ?", sub.Endpoint).Error; err != nil {
				return err
			}
			return tx.Delete(&sub).Error
		})
		if err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
