package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

/*

Photo is a shared memory uploaded by a member.

Id: primary key
StorageKey: object storage key of the image file
Url: public URL serving the stored image
Desc: uploader's description
PhotoYear: optional 4-digit capture year, empty when unknown
Tags: free-form tag array stored as JSON; after a tag edit the stored
      array is the smart-sorted, deduplicated form so that repeated edits
      with the same content are byte-identical
Uploader: denormalized display name of the uploader
UploaderID: owning user, "belongs-to" relation
Likes: members who hearted this photo, "many-to-many" relation
CommentsCount: denormalized size of the photo's comment list, rewritten
      from a recount on every comment change
ViewCount: detail view opens
LastCommentAt: timestamp of the latest comment, used for the "new
      comment" badge
Cursor: auto-inc global-unique index keeping the relative feed order

*/
type Photo struct {
	Id            string         `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	StorageKey    string         `json:"-"`
	Url           string         `json:"url"`
	Desc          string         `json:"desc"`
	PhotoYear     string         `json:"photoYear"`
	Tags          datatypes.JSON `json:"tags"`
	Uploader      string         `json:"uploader"`
	UploaderID    string         `gorm:"index" json:"uploaderId"`
	Likes         []*User        `gorm:"many2many:photo_likes;" json:"-"`
	LikeIds       []string       `gorm:"-" json:"likes"`
	CommentsCount int            `json:"commentsCount"`
	ViewCount     int            `json:"viewCount"`
	LastCommentAt *time.Time     `json:"lastCommentAt"`
	Cursor        int32          `gorm:"autoIncrement" json:"cursor"`
}

// TagList decodes the stored tag array. A photo created before any tag
// was attached decodes to an empty slice.
func (p *Photo) TagList() []string {
	if len(p.Tags) == 0 {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(p.Tags, &tags); err != nil {
		return []string{}
	}
	return tags
}

func (p *Photo) SetTagList(tags []string) error {
	raw, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	p.Tags = datatypes.JSON(raw)
	return nil
}

// FillLikeIds projects the preloaded like set into the wire form the
// client consumes (a plain array of user ids).
func (p *Photo) FillLikeIds() {
	ids := make([]string, 0, len(p.Likes))
	for _, u := range p.Likes {
		ids = append(ids, u.Id)
	}
	p.LikeIds = ids
}

func (p *Photo) IsLikedBy(userId string) bool {
	for _, u := range p.Likes {
		if u.Id == userId {
			return true
		}
	}
	return false
}
