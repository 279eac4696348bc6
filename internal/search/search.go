package search

import "huddle/api/internal/store"

// MessageRecord is the data we index for a message.
type MessageRecord struct {
	ID        int64  `json:"id"`
	ChannelID int64  `json:"channelId"`
	Text      string `json:"text"`
}

// Scanner is the authoritative message source the facade reads from. The
// in-memory dataset implements it; index hits are resolved back through it so
// results always reflect current state and the viewer's react annotations.
type Scanner interface {
	SearchMessages(viewerID int64, query string) []store.MessageView
	MemberChannelIDs(userID int64) []int64
	Message(viewerID, messageID int64) (store.MessageView, error)
}

// Record converts a stored message view into its index form.
func Record(v store.MessageView) MessageRecord {
	return MessageRecord{ID: v.ID, ChannelID: v.ChannelID, Text: v.Text}
}
