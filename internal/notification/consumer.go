package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/karthikeyan-cs/event-management-backend/utils"
)

// StartKafkaConsumer reads notification bus messages and materializes
// them as in-app notifications. Run as a goroutine from main; returns
// when the context is cancelled.
func StartKafkaConsumer(ctx context.Context, svc Service) {
	if !utils.IsKafkaEnabled() {
		log.Println("⚠️ Kafka disabled, notification consumer not started")
		return
	}

	reader := utils.NewKafkaReader()
	defer reader.Close()

	log.Println("🔄 Notification consumer started")

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("🔄 Notification consumer stopped")
				return
			}
			log.Printf("❌ kafka read error: %v", err)
			continue
		}

		var msg utils.NotificationMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("❌ malformed notification message: %v", err)
			continue
		}

		if err := dispatch(ctx, svc, msg); err != nil {
			log.Printf("⚠️ notification dispatch failed for %s: %v", msg.Type, err)
		}
	}
}

func dispatch(ctx context.Context, svc Service, msg utils.NotificationMessage) error {
	var eventID *uint
	if msg.EventID != 0 {
		id := msg.EventID
		eventID = &id
	}

	title := titleFor(msg.Type)

	switch msg.Type {
	case "event_submitted":
		// Admins review submissions; fan out to the whole role.
		return svc.NotifyRole(ctx, "admin", title, msg.Message, msg.Type, eventID)
	case "event_approved", "event_rejected":
		return svc.NotifyUser(ctx, msg.UserID, title, msg.Message, msg.Type, eventID)
	default:
		if msg.UserID != 0 {
			return svc.NotifyUser(ctx, msg.UserID, title, msg.Message, msg.Type, eventID)
		}
		return nil
	}
}

func titleFor(msgType string) string {
	switch msgType {
	case "event_submitted":
		return "New Event Submission"
	case "event_approved":
		return "Event Approved"
	case "event_rejected":
		return "Event Rejected"
	default:
		return "Notification"
	}
}
