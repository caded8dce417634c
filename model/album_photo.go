package model

import "time"

/*

AlbumPhoto is a "many-to-many" relation of a photo kept in an album

AlbumID: album id
PhotoID: photo id
CreatedAt: time when relation is created

Rows cascade away with the photo, so album listings never need a
per-album cleanup pass after a photo deletion.

*/

type AlbumPhoto struct {
	AlbumID   string `gorm:"primaryKey"`
	PhotoID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
