package model

import "time"

// Fixed realtime topics. Per-entity topics are derived with the helper
// functions below.
const (
	TopicPhotos  = "photos"
	TopicMembers = "members"

	// TopicFirehose receives a copy of every published event, for
	// monitoring consumers that want the whole stream.
	TopicFirehose = "firehose"
)

func PhotoTopic(photoId string) string   { return "photo:" + photoId }
func CommentTopic(photoId string) string { return "comments:" + photoId }
func AlbumTopic(userId string) string    { return "albums:" + userId }

// Event kinds.
const (
	EventPhotoCreated   = "photo.created"
	EventPhotoUpdated   = "photo.updated"
	EventPhotoDeleted   = "photo.deleted"
	EventMemberUpdated  = "member.updated"
	EventMemberJoined   = "member.joined"
	EventAlbumsUpdated  = "albums.updated"
	EventCommentsSynced = "comments.synced"
)

/*

Event is one realtime push to the clients subscribed to Topic.

The payload is always a full snapshot of the slice of state the topic
covers (a photo document, a user's complete album list, a photo's
complete comment list), never a delta. Consumers replace their local
copy with the payload; replaying or reordering events across different
topics is therefore harmless.

Deleted marks a tombstone: the entity behind a per-entity topic no
longer exists and views bound to it should close.

*/
type Event struct {
	Kind      string      `json:"kind"`
	Topic     string      `json:"topic"`
	Deleted   bool        `json:"deleted,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	EmittedAt time.Time   `json:"emittedAt"`
}
