package models

import (
	"time"
)

// NoticeLevel selects the accent of a notice
type NoticeLevel string

const (
	NoticeLevelInfo    NoticeLevel = "info"
	NoticeLevelSuccess NoticeLevel = "success"
	NoticeLevelWarning NoticeLevel = "warning"
	NoticeLevelError   NoticeLevel = "error"
)

// NoticeField is a name/value pair shown in a notice
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is a platform-neutral message posted to a channel (welcome, audit log, tickets)
type Notice struct {
	Title        string
	Description  string
	Level        NoticeLevel
	Fields       []NoticeField
	ThumbnailURL string
	Timestamp    time.Time
}
