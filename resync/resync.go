// Package resync rebuilds every denormalized counter from the raw rows. The
// counters normally move inside the mutation transactions, resync exists for
// the day they drift anyway (crashed deploys, manual row surgery).
package resync

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/photolog-app/photolog/model"
	Logger "github.com/photolog-app/photolog/utils/log"
	"gorm.io/gorm"
)

// Report summarizes what a resync pass changed.
type Report struct {
	UsersScanned  int `json:"usersScanned"`
	UsersChanged  int `json:"usersChanged"`
	PhotosScanned int `json:"photosScanned"`
	PhotosChanged int `json:"photosChanged"`
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

type userTally struct {
	uploadCount     int
	rxHeartCount    int
	rxCommentCount  int
	commentCount    int
	givenHeartCount int
}

// Run recomputes all counters in one transaction. tag_edit_count is left
// alone, tag edits leave no rows behind to recount from.
func Run(db *gorm.DB) (*Report, error) {
	report := &Report{}

	err := db.Transaction(func(tx *gorm.DB) error {
		var users []*model.User
		if err := tx.Find(&users).Error; err != nil {
			return err
		}
		var photos []*model.Photo
		if err := tx.Find(&photos).Error; err != nil {
			return err
		}
		var comments []*model.Comment
		if err := tx.Find(&comments).Error; err != nil {
			return err
		}
		var photoLikes []*model.PhotoLike
		if err := tx.Find(&photoLikes).Error; err != nil {
			return err
		}
		var commentLikes []*model.CommentLike
		if err := tx.Find(&commentLikes).Error; err != nil {
			return err
		}

		uploaderOf := make(map[string]string, len(photos))
		commentCountOf := make(map[string]int, len(photos))
		lastCommentOf := make(map[string]*time.Time, len(photos))
		for _, p := range photos {
			uploaderOf[p.Id] = p.UploaderID
		}

		tallies := make(map[string]*userTally, len(users))
		tally := func(userId string) *userTally {
			t, ok := tallies[userId]
			if !ok {
				t = &userTally{}
				tallies[userId] = t
			}
			return t
		}

		for _, p := range photos {
			tally(p.UploaderID).uploadCount++
		}
		for _, c := range comments {
			tally(c.WriterID).commentCount++
			commentCountOf[c.PhotoID]++
			if last := lastCommentOf[c.PhotoID]; last == nil || c.CreatedAt.After(*last) {
				createdAt := c.CreatedAt
				lastCommentOf[c.PhotoID] = &createdAt
			}
			if uploader, ok := uploaderOf[c.PhotoID]; ok {
				tally(uploader).rxCommentCount++
			}
		}
		for _, l := range photoLikes {
			tally(l.UserID).givenHeartCount++
			if uploader, ok := uploaderOf[l.PhotoID]; ok {
				tally(uploader).rxHeartCount++
			}
		}
		for _, l := range commentLikes {
			tally(l.UserID).givenHeartCount++
		}

		for _, u := range users {
			report.UsersScanned++
			t := tally(u.Id)
			if u.UploadCount == t.uploadCount &&
				u.RxHeartCount == t.rxHeartCount &&
				u.RxCommentCount == t.rxCommentCount &&
				u.CommentCount == t.commentCount &&
				u.GivenHeartCount == t.givenHeartCount {
				continue
			}

			var before model.User
			copier.Copy(&before, u)
			Logger.Log.Info("resync user ", u.Id,
				": upload ", before.UploadCount, "->", t.uploadCount,
				", rxHeart ", before.RxHeartCount, "->", t.rxHeartCount,
				", rxComment ", before.RxCommentCount, "->", t.rxCommentCount,
				", comment ", before.CommentCount, "->", t.commentCount,
				", givenHeart ", before.GivenHeartCount, "->", t.givenHeartCount)

			err := tx.Model(u).Updates(map[string]interface{}{
				"upload_count":      t.uploadCount,
				"rx_heart_count":    t.rxHeartCount,
				"rx_comment_count":  t.rxCommentCount,
				"comment_count":     t.commentCount,
				"given_heart_count": t.givenHeartCount,
			}).Error
			if err != nil {
				return err
			}
			report.UsersChanged++
		}

		for _, p := range photos {
			report.PhotosScanned++
			actual := commentCountOf[p.Id]
			lastAt := lastCommentOf[p.Id]
			if p.CommentsCount == actual && sameTime(p.LastCommentAt, lastAt) {
				continue
			}
			err := tx.Model(p).Updates(map[string]interface{}{
				"comments_count":  actual,
				"last_comment_at": lastAt,
			}).Error
			if err != nil {
				return err
			}
			report.PhotosChanged++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
