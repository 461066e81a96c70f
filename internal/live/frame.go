package live

import (
	"encoding/json"

	"github.com/dmitrymomot/notifyhub/internal/notification"
)

// Frame events.
const (
	EventNotifications    = "notifications"
	EventNewNotification  = "newNotification"
	EventNotificationRead = "notificationRead"
	EventError            = "error"
	EventMarkRead         = "markRead"
)

// Frame is one message on the live channel.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// inboundFrame is a client message; Data is decoded per event.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type markReadData struct {
	NotificationID string `json:"notificationId"`
}

type notificationReadData struct {
	NotificationID string `json:"notificationId"`
	IsRead         bool   `json:"isRead"`
}

type errorData struct {
	Code           string `json:"code"`
	Message        string `json:"message,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
}

func NewNotificationFrame(n notification.Notification) Frame {
	return Frame{Event: EventNewNotification, Data: n}
}

func NotificationsFrame(list []notification.Notification) Frame {
	if list == nil {
		list = []notification.Notification{}
	}
	return Frame{Event: EventNotifications, Data: list}
}

func NotificationReadFrame(id string) Frame {
	return Frame{Event: EventNotificationRead, Data: notificationReadData{NotificationID: id, IsRead: true}}
}

func ErrorFrame(code, message, notificationID string) Frame {
	return Frame{Event: EventError, Data: errorData{Code: code, Message: message, NotificationID: notificationID}}
}
