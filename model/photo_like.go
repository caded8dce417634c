package model

import "time"

/*

PhotoLike is a "many-to-many" relation of user hearting a photo

PhotoID: photo id
UserID: user id
CreatedAt: time when relation is created

*/

type PhotoLike struct {
	PhotoID   string `gorm:"primaryKey"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}
