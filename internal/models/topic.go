package models

// TopicModel is a normalized topic extracted from note content.
type TopicModel struct {
	Base
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (TopicModel) TableName() string { return "topics" }

// NoteTopicModel joins notes to topics.
type NoteTopicModel struct {
	Base
	NoteID  string `json:"note_id"  gorm:"uniqueIndex:uniq_note_topic;not null"`
	TopicID string `json:"topic_id" gorm:"uniqueIndex:uniq_note_topic;not null"`
}

func (NoteTopicModel) TableName() string { return "note_topics" }

// TagStatModel records tag application frequency and topic co-occurrence,
// which drives the lightweight suggestion learning.
type TagStatModel struct {
	Base
	Tag    string `json:"tag"    gorm:"uniqueIndex:uniq_tag_stat;not null"`
	Source string `json:"source" gorm:"uniqueIndex:uniq_tag_stat;not null"` // auto | manual
	Topic  string `json:"topic"  gorm:"uniqueIndex:uniq_tag_stat"`          // empty = plain frequency row
	Count  int    `json:"count"  gorm:"default:0"`
}

func (TagStatModel) TableName() string { return "tag_stats" }

const (
	TagSourceAuto   = "auto"
	TagSourceManual = "manual"
)
