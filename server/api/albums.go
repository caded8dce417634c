package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	"gorm.io/gorm"
)

// listAlbums loads a user's albums oldest first, lazily creating the default
// album when the user has none yet.
func (api *API) listAlbums(userId string) ([]*model.Album, error) {
	var albums []*model.Album
	err := api.DB.Preload("Photos").
		Where("owner_id = ?", userId).
		Order("created_at asc").
		Find(&albums).Error
	if err != nil {
		return nil, err
	}

	if len(albums) == 0 {
		def := &model.Album{
			Id:        uuid.New().String(),
			OwnerID:   userId,
			Name:      model.DefaultAlbumName,
			IsDefault: true,
		}
		if err := api.DB.Create(def).Error; err != nil {
			return nil, err
		}
		albums = append(albums, def)
	}

	for _, a := range albums {
		a.FillPhotoIds()
	}
	return albums, nil
}

// loadOwnAlbum fetches one album and rejects callers that do not own it.
func (api *API) loadOwnAlbum(c *gin.Context, userId string) (*model.Album, bool) {
	var album model.Album
	err := api.DB.Preload("Photos").First(&album, "id = ?", c.Param("id")).Error
	if err == gorm.ErrRecordNotFound {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "album not found")
		return nil, false
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return nil, false
	}
	if album.OwnerID != userId {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "not your album")
		return nil, false
	}
	return &album, true
}

// ListAlbums serves the caller's album list.
func (api *API) ListAlbums(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	albums, err := api.listAlbums(user.Id)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

// CreateAlbum adds a personal album. Names are unique per owner, compared
// case sensitively the way the album picker displays them.
func (api *API) CreateAlbum(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	var input model.CreateAlbumInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "album name is empty")
		return
	}

	var count int64
	api.DB.Model(&model.Album{}).
		Where("owner_id = ? AND name = ?", user.Id, name).
		Count(&count)
	if count > 0 {
		fail(c, http.StatusConflict, utils.ErrorConflict, "album name already in use")
		return
	}

	album := &model.Album{
		Id:      uuid.New().String(),
		OwnerID: user.Id,
		Name:    name,
	}
	if err := api.DB.Create(album).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	album.FillPhotoIds()

	api.syncAlbumTopic(user.Id)
	c.JSON(http.StatusCreated, album)
}

// RenameAlbum renames an owned album, default album included.
func (api *API) RenameAlbum(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	album, ok := api.loadOwnAlbum(c, user.Id)
	if !ok {
		return
	}

	var input model.RenameAlbumInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "album name is empty")
		return
	}

	var count int64
	api.DB.Model(&model.Album{}).
		Where("owner_id = ? AND name = ? AND id <> ?", user.Id, name, album.Id).
		Count(&count)
	if count > 0 {
		fail(c, http.StatusConflict, utils.ErrorConflict, "album name already in use")
		return
	}

	if err := api.DB.Model(album).Update("name", name).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	album.Name = name
	album.FillPhotoIds()

	api.syncAlbumTopic(user.Id)
	c.JSON(http.StatusOK, album)
}

// DeleteAlbum removes an owned, non-default album and its membership rows.
// Photos themselves are untouched.
func (api *API) DeleteAlbum(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	album, ok := api.loadOwnAlbum(c, user.Id)
	if !ok {
		return
	}
	if album.IsDefault {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "the default album cannot be deleted")
		return
	}

	err := api.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", album.Id).Delete(&model.AlbumPhoto{}).Error; err != nil {
			return err
		}
		return tx.Delete(album).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	api.syncAlbumTopic(user.Id)
	c.Status(http.StatusNoContent)
}

// ToggleAlbumPhoto flips a photo's membership in an owned album. Toggling
// twice restores the original state.
func (api *API) ToggleAlbumPhoto(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	album, ok := api.loadOwnAlbum(c, user.Id)
	if !ok {
		return
	}

	photoId := c.Param("photoId")
	var photo model.Photo
	if err := api.DB.First(&photo, "id = ?", photoId).Error; err != nil {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "photo not found")
		return
	}

	var err error
	if album.Contains(photoId) {
		err = api.DB.Delete(&model.AlbumPhoto{AlbumID: album.Id, PhotoID: photoId}).Error
	} else {
		err = api.DB.Create(&model.AlbumPhoto{AlbumID: album.Id, PhotoID: photoId}).Error
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	album, ok = api.loadOwnAlbum(c, user.Id)
	if !ok {
		return
	}
	album.FillPhotoIds()

	api.syncAlbumTopic(user.Id)
	c.JSON(http.StatusOK, album)
}

// AlbumPhotos lists the live photos kept in an owned album. Deleted photos
// cascade out of the join table, the list never needs filtering.
func (api *API) AlbumPhotos(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	album, ok := api.loadOwnAlbum(c, user.Id)
	if !ok {
		return
	}

	var photos []*model.Photo
	err := api.DB.Preload("Likes").
		Joins("join album_photos on album_photos.photo_id = photos.id").
		Where("album_photos.album_id = ?", album.Id).
		Order("album_photos.created_at desc").
		Find(&photos).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	for _, p := range photos {
		p.FillLikeIds()
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// syncAlbumTopic republishes the owner's full album list to their private
// topic.
func (api *API) syncAlbumTopic(userId string) {
	albums, err := api.listAlbums(userId)
	if err != nil {
		return
	}
	api.publishAlbums(userId, albums)
}
