package model

import "time"

/*

Comment belongs to exactly one photo.

ParentID: set when the comment is a reply to a root comment. Nesting is
a single level deep: a reply's parent must itself be a root comment, so
replies can never be replied to.

Writer/WriterGisu are denormalized from the writer's user record at
creation time, matching what the feed renders.

*/
type Comment struct {
	Id           string    `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	PhotoID      string    `gorm:"index" json:"photoId"`
	Text         string    `json:"text"`
	Writer       string    `json:"writer"`
	WriterID     string    `json:"writerId"`
	WriterGisu   string    `json:"writerGisu"`
	ParentID     *string   `json:"parentId"`
	Likes        []*User   `gorm:"many2many:comment_likes;" json:"-"`
	LikeIds      []string  `gorm:"-" json:"likes"`
	CreatedLabel string    `gorm:"-" json:"createdLabel"`
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

func (c *Comment) FillLikeIds() {
	ids := make([]string, 0, len(c.Likes))
	for _, u := range c.Likes {
		ids = append(ids, u.Id)
	}
	c.LikeIds = ids
}
