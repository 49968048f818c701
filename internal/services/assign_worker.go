package services

import (
	"context"
	"log"
	"time"

	"mailassign-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmailQueue is the slice of the inbound-email store the worker needs.
type EmailQueue interface {
	ListUnprocessed(ctx context.Context, limit int) ([]*models.InboundEmail, error)
	MarkProcessed(ctx context.Context, emailID primitive.ObjectID) error
}

// StartAssignWorker starts a background goroutine that periodically drains
// unprocessed inbound emails through the assignment service. A failure on
// one email only skips that email; it stays queued for the next tick. The
// worker stops when ctx is done.
func StartAssignWorker(ctx context.Context, interval time.Duration, queue EmailQueue, service *AssignmentService) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Println("assign worker: shutting down")
				return
			case <-ticker.C:
				emails, err := queue.ListUnprocessed(ctx, 100)
				if err != nil {
					log.Println("assign worker: error listing unprocessed emails:", err)
					continue
				}
				for _, e := range emails {
					if _, err := service.ProcessEmail(ctx, e); err != nil {
						log.Println("assign worker: failed to process email:", e.Identity(), err)
						continue
					}
					if err := queue.MarkProcessed(ctx, e.ID); err != nil {
						log.Println("assign worker: failed to mark processed:", e.Identity(), err)
					}
				}
			}
		}
	}()
}
