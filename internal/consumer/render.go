package consumer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrymomot/notifyhub/internal/event"
	"github.com/dmitrymomot/notifyhub/internal/notification"
	"github.com/dmitrymomot/notifyhub/internal/push"
)

const excerptLen = 80

func displayName(username string) string {
	if username == "" {
		return "Someone"
	}
	return username
}

func targetNoun(targetType string) string {
	if strings.EqualFold(targetType, event.TargetReel) {
		return "reel"
	}
	return "post"
}

func followMessage(username string) string {
	return displayName(username) + " started following you"
}

func newPostMessage(username string) string {
	return displayName(username) + " published a new post"
}

func newReelMessage(username string) string {
	return displayName(username) + " uploaded a new reel"
}

func likeMessage(username, targetType string) string {
	return fmt.Sprintf("%s liked your %s", displayName(username), targetNoun(targetType))
}

func commentMessage(username, targetType, text string) string {
	msg := fmt.Sprintf("%s commented on your %s", displayName(username), targetNoun(targetType))
	if text = strings.TrimSpace(text); text != "" {
		msg += ": " + excerpt(text)
	}
	return msg
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	r := []rune(s)
	return string(r[:excerptLen-1]) + "…"
}

var pushTitles = map[notification.Type]string{
	notification.TypeFollow:  "New follower",
	notification.TypeNewPost: "New post",
	notification.TypeNewReel: "New reel",
	notification.TypeLike:    "New like",
	notification.TypeComment: "New comment",
}

// RenderPush builds the push payload for n. The click-through URL points at
// the related post or reel, the related user for follows, and the
// notification list otherwise.
func RenderPush(n notification.Notification) push.Payload {
	title, ok := pushTitles[n.Type]
	if !ok {
		title = "Notification"
	}

	data := push.PayloadData{
		NotificationID: n.ID,
		PostID:         n.RelatedPostID,
		ReelID:         n.RelatedReelID,
		UserID:         n.RelatedUserID,
	}
	switch {
	case n.RelatedPostID != "":
		data.URL = "/posts/" + n.RelatedPostID
	case n.RelatedReelID != "":
		data.URL = "/reels/" + n.RelatedReelID
	case n.Type == notification.TypeFollow && n.RelatedUserID != "":
		data.URL = "/users/" + n.RelatedUserID
	default:
		data.URL = "/notifications"
	}

	return push.Payload{Title: title, Body: n.Message, Data: data}
}
