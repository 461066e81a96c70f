package push

import "encoding/json"

// Payload is the JSON document a service worker receives.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Icon  string      `json:"icon,omitempty"`
	Badge string      `json:"badge,omitempty"`
	Data  PayloadData `json:"data"`
}

// PayloadData tells the client where to navigate on click.
type PayloadData struct {
	URL            string `json:"url"`
	NotificationID string `json:"notificationId,omitempty"`
	PostID         string `json:"postId,omitempty"`
	ReelID         string `json:"reelId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
