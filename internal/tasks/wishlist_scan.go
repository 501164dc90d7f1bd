package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/circulation/internal/entities"
)

// WishlistScanner finds students whose wishlisted books became available.
type WishlistScanner interface {
	WishlistHolders(ctx context.Context) ([]entities.Borrower, error)
	WishlistNotifications(ctx context.Context, borrowerID uint) ([]entities.Book, error)
}

// WishlistScanTask logs, per student, the wishlisted books that can be
// borrowed now.
type WishlistScanTask struct{}

func (t WishlistScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "wishlist_scan",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// WishlistScanProcessor creates a processor function for WishlistScanTask.
// A failure for one student is logged and the scan moves on.
func WishlistScanProcessor(scanner WishlistScanner, notes NotificationLogger) backlite.QueueProcessor[WishlistScanTask] {
	return func(ctx context.Context, task WishlistScanTask) error {
		if scanner == nil {
			return fmt.Errorf("wishlist scanner not configured")
		}

		holders, err := scanner.WishlistHolders(ctx)
		if err != nil {
			if notes != nil {
				notes.LogNotification("wishlist_scan", "Wishlist scan failed", 0, err)
			}
			return fmt.Errorf("wishlist scan: %w", err)
		}

		notified, failed := 0, 0
		for _, student := range holders {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			books, err := scanner.WishlistNotifications(ctx, student.ID)
			if err != nil {
				failed++
				log.Printf("[TASK] Wishlist scan for %s failed: %v", student.Username, err)
				continue
			}
			if len(books) == 0 {
				continue
			}

			titles := make([]string, len(books))
			for i, b := range books {
				titles[i] = b.Title
			}
			notified++
			log.Printf("[TASK] Wishlist: %s can borrow %s", student.Username, strings.Join(titles, ", "))
		}

		log.Printf("[TASK] Wishlist scan: %d of %d students have available books (%d failed)",
			notified, len(holders), failed)
		if notes != nil {
			notes.LogNotification("wishlist_scan",
				fmt.Sprintf("Wishlist scan over %d students", len(holders)), notified, nil)
		}
		return nil
	}
}

func NewWishlistScanQueue(scanner WishlistScanner, notes NotificationLogger) backlite.Queue {
	return backlite.NewQueue(WishlistScanProcessor(scanner, notes))
}
