package model

import "time"

/*

CommentLike is a "many-to-many" relation of user hearting a comment

CommentID: comment id
UserID: user id
CreatedAt: time when relation is created

*/

type CommentLike struct {
	CommentID string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}
