package cache

import (
	"strings"
	"time"
)

// Key families. Every key the pipeline touches is built here so invalidation
// and prefix deletes agree with readers.
const (
	followStatsPrefix = "follow:stats:"
	followersPrefix   = "follow:followers:"
	analyticsPrefix   = "analytics:"
	unreadPrefix      = "notifications:unread:"
)

// Analytics metrics.
const (
	MetricLikes    = "likes"
	MetricComments = "comments"
	MetricViews    = "views"
)

// FollowStatsKey holds the follower/following counters of a user.
func FollowStatsKey(userID string) string {
	return followStatsPrefix + userID
}

// FollowersKey holds the follower id list of a user.
func FollowersKey(userID string) string {
	return followersPrefix + userID
}

// UnreadCountKey holds the unread notification count of a recipient.
func UnreadCountKey(recipientID string) string {
	return unreadPrefix + recipientID
}

// AnalyticsKey is analytics:<metric>:<targetType>:<targetID>.
func AnalyticsKey(metric, targetType, targetID string) string {
	return join(analyticsPrefix+metric, strings.ToLower(targetType), targetID)
}

// DailyKey is analytics:<metric>:daily:<yyyy-mm-dd> in UTC.
func DailyKey(metric string, day time.Time) string {
	return join(analyticsPrefix+metric, "daily", day.UTC().Format(time.DateOnly))
}

// AnalyticsPrefix matches every analytics key of a metric.
func AnalyticsPrefix(metric string) string {
	return analyticsPrefix + metric + ":"
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}
