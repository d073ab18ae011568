package models

import "time"

// Notification is a read-through cached copy of a backend notification.
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
