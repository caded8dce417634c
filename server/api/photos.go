package api

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	Logger "github.com/photolog-app/photolog/utils/log"
	"gorm.io/gorm"
)

const (
	defaultFeedLimit = 30
	maxFeedLimit     = 30
)

var photoYearRe = regexp.MustCompile(`^\d{4}$`)

// ListPhotos serves the feed. Search matches description, uploader name and
// the raw tag json. Sort orders by upload time, photo year or random; cursor
// pagination only applies to the default upload_desc order.
func (api *API) ListPhotos(c *gin.Context) {
	limit := defaultFeedLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "invalid limit")
			return
		}
		limit = utils.Min(parsed, maxFeedLimit)
	}

	query := api.DB.Model(&model.Photo{}).Preload("Likes")

	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			`photos."desc" LIKE ? OR photos.uploader LIKE ? OR photos.tags::text LIKE ?`,
			pattern, pattern, pattern)
	}

	sortBy := c.DefaultQuery("sort", "upload_desc")
	switch sortBy {
	case "upload_desc":
		if v := c.Query("cursor"); v != "" {
			cursor, err := strconv.Atoi(v)
			if err != nil {
				fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "invalid cursor")
				return
			}
			query = query.Where("cursor < ?", cursor)
		}
		query = query.Order("cursor desc")
	case "upload_asc":
		query = query.Order("cursor asc")
	case "year_desc":
		query = query.Order("photo_year desc, cursor desc")
	case "year_asc":
		query = query.Order("photo_year asc, cursor desc")
	case "random":
		query = query.Order("RANDOM()")
	default:
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "unknown sort: "+sortBy)
		return
	}

	var photos []*model.Photo
	if err := query.Limit(limit).Find(&photos).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	for _, p := range photos {
		p.FillLikeIds()
	}

	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// GetPhoto serves one photo document.
func (api *API) GetPhoto(c *gin.Context) {
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, photo)
}

// UploadPhoto accepts a multipart form with an "image" file plus optional
// desc, photoYear and repeated tags fields. The uploader earns upload points
// through their counter.
func (api *API) UploadPhoto(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "missing image file")
		return
	}

	photoYear := c.PostForm("photoYear")
	if photoYear != "" && !photoYearRe.MatchString(photoYear) {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "photoYear must be a 4 digit year")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}
	defer file.Close()

	key, err := api.Files.Store(fileHeader.Filename, file)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	photo := &model.Photo{
		Id:         uuid.New().String(),
		StorageKey: key,
		Url:        api.Files.GetUrlFromKey(key),
		Desc:       c.PostForm("desc"),
		PhotoYear:  photoYear,
		Uploader:   user.Name,
		UploaderID: user.Id,
	}
	if err := photo.SetTagList(utils.NormalizeTags(c.PostFormArray("tags"))); err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	err = api.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(photo).Error; err != nil {
			return err
		}
		return tx.Model(user).
			Update("upload_count", gorm.Expr("upload_count + 1")).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	api.publishPhoto(model.EventPhotoCreated, photo)
	api.syncMembers(user.Id)
	c.JSON(http.StatusCreated, photo)
}

// ViewPhoto bumps the detail view counter.
func (api *API) ViewPhoto(c *gin.Context) {
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}

	err := api.DB.Model(photo).
		Update("view_count", gorm.Expr("view_count + 1")).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	photo.ViewCount++

	c.JSON(http.StatusOK, photo)
}

// UpdateDesc rewrites the description, owner only.
func (api *API) UpdateDesc(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}
	if photo.UploaderID != user.Id {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "only the uploader can edit the description")
		return
	}

	var input model.UpdateDescInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	if err := api.DB.Model(photo).Update("desc", input.Desc).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	photo.Desc = input.Desc

	api.publishPhoto(model.EventPhotoUpdated, photo)
	c.JSON(http.StatusOK, photo)
}

// UpdateYear rewrites the photo year. Any member may correct it, the value
// is either empty or a 4 digit year.
func (api *API) UpdateYear(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}

	var input model.UpdateYearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}
	if input.PhotoYear != "" && !photoYearRe.MatchString(input.PhotoYear) {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "photoYear must be a 4 digit year")
		return
	}

	if err := api.DB.Model(photo).Update("photo_year", input.PhotoYear).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	photo.PhotoYear = input.PhotoYear

	api.publishPhoto(model.EventPhotoUpdated, photo)
	c.JSON(http.StatusOK, photo)
}

// UpdateTags replaces the tag set. The incoming tags are normalized first;
// when the normalized set equals what is stored the request is a no-op and
// earns nothing. A real change rewrites the set and bumps the editor's
// tag_edit_count exactly once.
func (api *API) UpdateTags(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}

	var input model.UpdateTagsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	normalized := utils.NormalizeTags(input.Tags)
	if utils.TagsEqual(normalized, utils.SortTagsSmart(photo.TagList())) {
		c.JSON(http.StatusOK, photo)
		return
	}

	if err := photo.SetTagList(normalized); err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	err := api.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(photo).Update("tags", photo.Tags).Error; err != nil {
			return err
		}
		return tx.Model(user).
			Update("tag_edit_count", gorm.Expr("tag_edit_count + 1")).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	api.publishPhoto(model.EventPhotoUpdated, photo)
	api.syncMembers(user.Id)
	c.JSON(http.StatusOK, photo)
}

// ToggleLike flips the caller's heart on a photo and moves the paired
// counters: the liker's given_heart_count and the uploader's rx_heart_count,
// both clamped at zero on the way down.
func (api *API) ToggleLike(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}

	liked := photo.IsLikedBy(user.Id)
	err := api.DB.Transaction(func(tx *gorm.DB) error {
		if liked {
			if err := tx.Delete(&model.PhotoLike{PhotoID: photo.Id, UserID: user.Id}).Error; err != nil {
				return err
			}
			if err := tx.Model(user).
				Update("given_heart_count", gorm.Expr("GREATEST(given_heart_count - 1, 0)")).Error; err != nil {
				return err
			}
			return tx.Model(&model.User{}).Where("id = ?", photo.UploaderID).
				Update("rx_heart_count", gorm.Expr("GREATEST(rx_heart_count - 1, 0)")).Error
		}
		if err := tx.Create(&model.PhotoLike{PhotoID: photo.Id, UserID: user.Id}).Error; err != nil {
			return err
		}
		if err := tx.Model(user).
			Update("given_heart_count", gorm.Expr("given_heart_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", photo.UploaderID).
			Update("rx_heart_count", gorm.Expr("rx_heart_count + 1")).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	photo, ok = api.loadPhoto(c, photo.Id)
	if !ok {
		return
	}
	api.publishPhoto(model.EventPhotoUpdated, photo)
	api.syncMembers(user.Id, photo.UploaderID)
	c.JSON(http.StatusOK, photo)
}

// DeletePhoto removes a photo and everything hanging off it: comment likes,
// comments, photo likes and album memberships. Owner or admin only. The S3
// object is removed best effort, a stale blob is not worth failing the
// request over.
func (api *API) DeletePhoto(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}
	if photo.UploaderID != user.Id && !user.IsAdmin() {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "only the uploader or an admin can delete a photo")
		return
	}

	err := api.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE photo_id = ?)",
			photo.Id).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", photo.Id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", photo.Id).Delete(&model.PhotoLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("photo_id = ?", photo.Id).Delete(&model.AlbumPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(photo).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", photo.UploaderID).
			Update("upload_count", gorm.Expr("GREATEST(upload_count - 1, 0)")).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	if photo.StorageKey != "" {
		if err := api.Files.Delete(photo.StorageKey); err != nil {
			Logger.Log.Warn("fail to delete stored file ", photo.StorageKey, ": ", err)
		}
	}

	api.publishPhotoTombstone(photo.Id)
	api.syncMembers(photo.UploaderID)
	c.Status(http.StatusNoContent)
}
