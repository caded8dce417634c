package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	"gorm.io/gorm"
)

// listComments loads a photo's comments in chronological order with like
// sets preloaded and display labels filled.
func (api *API) listComments(photoId string) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := api.DB.Preload("Likes").
		Where("photo_id = ?", photoId).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		comment.FillLikeIds()
		comment.CreatedLabel = utils.FormatDate(comment.CreatedAt)
	}
	return comments, nil
}

// recountComments rewrites the photo's denormalized comment columns from the
// actual rows: the count and the newest comment time, NULL once the thread is
// empty. Runs inside the mutation transaction so readers never observe
// drifted values.
func recountComments(tx *gorm.DB, photoId string) error {
	if err := tx.Model(&model.Photo{}).Where("id = ?", photoId).
		Update("comments_count",
			tx.Model(&model.Comment{}).Select("count(*)").Where("photo_id = ?", photoId),
		).Error; err != nil {
		return err
	}
	return tx.Model(&model.Photo{}).Where("id = ?", photoId).
		Update("last_comment_at",
			tx.Model(&model.Comment{}).Select("max(created_at)").Where("photo_id = ?", photoId),
		).Error
}

// ListComments serves a photo's comment thread.
func (api *API) ListComments(c *gin.Context) {
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}
	comments, err := api.listComments(photo.Id)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment inserts a comment or a reply. Replies nest a single level: a
// parent must be a root comment on the same photo. The writer earns comment
// points, the uploader earns received-comment points.
func (api *API) CreateComment(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	photo, ok := api.loadPhoto(c, c.Param("id"))
	if !ok {
		return
	}

	var input model.CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	if input.ParentID != nil {
		var parent model.Comment
		if err := api.DB.First(&parent, "id = ?", *input.ParentID).Error; err != nil {
			fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "parent comment not found")
			return
		}
		if parent.PhotoID != photo.Id || parent.IsReply() {
			fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "replies can only target a root comment on the same photo")
			return
		}
	}

	comment := &model.Comment{
		Id:         uuid.New().String(),
		PhotoID:    photo.Id,
		Text:       input.Text,
		Writer:     user.Name,
		WriterID:   user.Id,
		WriterGisu: user.Gisu,
		ParentID:   input.ParentID,
	}

	err := api.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(user).
			Update("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("id = ?", photo.UploaderID).
			Update("rx_comment_count", gorm.Expr("rx_comment_count + 1")).Error; err != nil {
			return err
		}
		return recountComments(tx, photo.Id)
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	comment.FillLikeIds()
	comment.CreatedLabel = utils.FormatDate(comment.CreatedAt)

	api.syncCommentTopic(photo.Id)
	api.syncMembers(user.Id, photo.UploaderID)
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes a comment (and its replies, when it is a root) and
// walks the counters back, clamped at zero. Writer or admin only.
func (api *API) DeleteComment(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	var comment model.Comment
	err := api.DB.First(&comment, "id = ?", c.Param("id")).Error
	if err == gorm.ErrRecordNotFound {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "comment not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	if comment.WriterID != user.Id && !user.IsAdmin() {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "only the writer or an admin can delete a comment")
		return
	}

	var photo model.Photo
	if err := api.DB.First(&photo, "id = ?", comment.PhotoID).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	touched := []string{photo.UploaderID}
	err = api.DB.Transaction(func(tx *gorm.DB) error {
		// Collect the comment and, for a root, its replies. Each removed row
		// unwinds its writer's and the uploader's counters.
		var doomed []*model.Comment
		if err := tx.
			Where("id = ? OR parent_id = ?", comment.Id, comment.Id).
			Find(&doomed).Error; err != nil {
			return err
		}

		for _, d := range doomed {
			touched = append(touched, d.WriterID)
			if err := tx.Exec("DELETE FROM comment_likes WHERE comment_id = ?", d.Id).Error; err != nil {
				return err
			}
			if err := tx.Delete(d).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.User{}).Where("id = ?", d.WriterID).
				Update("comment_count", gorm.Expr("GREATEST(comment_count - 1, 0)")).Error; err != nil {
				return err
			}
			if err := tx.Model(&model.User{}).Where("id = ?", photo.UploaderID).
				Update("rx_comment_count", gorm.Expr("GREATEST(rx_comment_count - 1, 0)")).Error; err != nil {
				return err
			}
		}
		return recountComments(tx, photo.Id)
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	api.syncCommentTopic(photo.Id)
	api.syncMembers(touched...)
	c.Status(http.StatusNoContent)
}

// ToggleCommentLike flips the caller's heart on a comment. Only the liker's
// given_heart_count moves, comment writers earn nothing for received hearts.
func (api *API) ToggleCommentLike(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	var comment model.Comment
	err := api.DB.Preload("Likes").First(&comment, "id = ?", c.Param("id")).Error
	if err == gorm.ErrRecordNotFound {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "comment not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	liked := false
	for _, u := range comment.Likes {
		if u.Id == user.Id {
			liked = true
			break
		}
	}

	err = api.DB.Transaction(func(tx *gorm.DB) error {
		if liked {
			if err := tx.Delete(&model.CommentLike{CommentID: comment.Id, UserID: user.Id}).Error; err != nil {
				return err
			}
			return tx.Model(user).
				Update("given_heart_count", gorm.Expr("GREATEST(given_heart_count - 1, 0)")).Error
		}
		if err := tx.Create(&model.CommentLike{CommentID: comment.Id, UserID: user.Id}).Error; err != nil {
			return err
		}
		return tx.Model(user).
			Update("given_heart_count", gorm.Expr("given_heart_count + 1")).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	api.syncCommentTopic(comment.PhotoID)
	api.syncMembers(user.Id)
	c.Status(http.StatusOK)
}

// syncCommentTopic republishes the photo's full comment list and the photo
// snapshot (its comment counter moved with the list).
func (api *API) syncCommentTopic(photoId string) {
	comments, err := api.listComments(photoId)
	if err != nil {
		return
	}
	api.publishComments(photoId, comments)

	var photo model.Photo
	if err := api.DB.Preload("Likes").First(&photo, "id = ?", photoId).Error; err == nil {
		api.publishPhoto(model.EventPhotoUpdated, &photo)
	}
}
