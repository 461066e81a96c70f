// Package social is a small in-process stand-in for the business services
// that feed the pipeline: follows, posts, reels, likes, comments and views.
//
// It shows the two rules every collaborator follows. A write that changes a
// cached aggregate deletes the affected keys synchronously before returning.
// Events are published after the write and a failed publish never fails the
// write.
package social
