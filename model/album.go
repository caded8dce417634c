package model

import "time"

/*

Album is a user-owned named subset of photos.

OwnerID: owning user, "belongs-to" relation
IsDefault: every user has exactly one default album. It cannot be
deleted and is lazily created the first time the user's album list is
read and found empty.
Photos: member photos, "many-to-many" relation. Membership order is not
meaningful.

*/
type Album struct {
	Id        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	OwnerID   string    `gorm:"index" json:"ownerId"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	Photos    []*Photo  `gorm:"many2many:album_photos;" json:"-"`
	PhotoIds  []string  `gorm:"-" json:"photoIds"`
}

// DefaultAlbumName is what the lazily created default album is called.
const DefaultAlbumName = "♥ 기본 보관함"

func (a *Album) FillPhotoIds() {
	ids := make([]string, 0, len(a.Photos))
	for _, p := range a.Photos {
		ids = append(ids, p.Id)
	}
	a.PhotoIds = ids
}

func (a *Album) Contains(photoId string) bool {
	for _, p := range a.Photos {
		if p.Id == photoId {
			return true
		}
	}
	return false
}
