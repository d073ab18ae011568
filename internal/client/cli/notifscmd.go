package cli

import (
	"context"
	"fmt"
)

// Notifications refreshes the panel from the backend and prints it.
func (a *App) Notifications(ctx context.Context) error {
	if err := a.notifs.Fetch(ctx); err != nil {
		reportErr(err)
		return err
	}

	list := a.notifs.List()
	if len(list) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	for _, n := range list {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s %-26s %s  (%s)\n", marker, n.ID, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d unread\n", a.notifs.UnreadCount())
	return nil
}

// ReadAll marks every notification read.
func (a *App) ReadAll(ctx context.Context) error {
	if err := a.notifs.MarkAllRead(ctx); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("All notifications marked read.")
	return nil
}

// DeleteNotification removes one notification by id.
func (a *App) DeleteNotification(ctx context.Context, id string) error {
	if err := a.notifs.Delete(ctx, id); err != nil {
		reportErr(err)
		return err
	}
	fmt.Println("Notification deleted.")
	return nil
}
