package resync

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	"github.com/photolog-app/photolog/utils/dotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func createUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{Id: uuid.New().String(), Name: name, Role: model.RoleMember}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRunRebuildsCounters(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	uploader := createUser(t, db, "업로더")
	fan := createUser(t, db, "팬")

	photo := &model.Photo{Id: uuid.New().String(), UploaderID: uploader.Id}
	require.NoError(t, db.Create(photo).Error)

	comment := &model.Comment{Id: uuid.New().String(), PhotoID: photo.Id, WriterID: fan.Id, Text: "멋져요"}
	require.NoError(t, db.Create(comment).Error)
	require.NoError(t, db.Create(&model.PhotoLike{PhotoID: photo.Id, UserID: fan.Id}).Error)
	require.NoError(t, db.Create(&model.CommentLike{CommentID: comment.Id, UserID: uploader.Id}).Error)

	// Counters start at zero and the photo's comment count is stale, the
	// resync derives everything from the rows above.
	report, err := Run(db)
	require.NoError(t, err)
	require.Equal(t, 2, report.UsersScanned)
	require.Equal(t, 2, report.UsersChanged)
	require.Equal(t, 1, report.PhotosChanged)

	var u model.User
	require.NoError(t, db.First(&u, "id = ?", uploader.Id).Error)
	require.Equal(t, 1, u.UploadCount)
	require.Equal(t, 1, u.RxHeartCount)
	require.Equal(t, 1, u.RxCommentCount)
	require.Equal(t, 1, u.GivenHeartCount)

	// Reset the struct: gorm includes a populated primary key in the
	// query conditions, which would make this lookup match no rows.
	u = model.User{}
	require.NoError(t, db.First(&u, "id = ?", fan.Id).Error)
	require.Equal(t, 1, u.CommentCount)
	require.Equal(t, 1, u.GivenHeartCount)

	var p model.Photo
	require.NoError(t, db.First(&p, "id = ?", photo.Id).Error)
	require.Equal(t, 1, p.CommentsCount)
	require.NotNil(t, p.LastCommentAt)

	// A second pass finds nothing to correct.
	report, err = Run(db)
	require.NoError(t, err)
	require.Zero(t, report.UsersChanged)
	require.Zero(t, report.PhotosChanged)
}

func TestRunClearsStaleLastCommentAt(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	uploader := createUser(t, db, "업로더")
	photo := &model.Photo{Id: uuid.New().String(), UploaderID: uploader.Id}
	require.NoError(t, db.Create(photo).Error)

	// A comment existed once, left its timestamp behind and was removed by
	// hand. The resync nulls the timestamp out again.
	now := time.Now()
	require.NoError(t, db.Model(photo).Update("last_comment_at", now).Error)

	report, err := Run(db)
	require.NoError(t, err)
	require.Equal(t, 1, report.PhotosChanged)

	var p model.Photo
	require.NoError(t, db.First(&p, "id = ?", photo.Id).Error)
	require.Nil(t, p.LastCommentAt)
}

func TestRunLeavesTagEditCountAlone(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	user := createUser(t, db, "편집자")
	require.NoError(t, db.Model(user).Update("tag_edit_count", 7).Error)

	_, err := Run(db)
	require.NoError(t, err)

	var u model.User
	require.NoError(t, db.First(&u, "id = ?", user.Id).Error)
	require.Equal(t, 7, u.TagEditCount)
}
