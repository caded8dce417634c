package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/photolog-app/photolog/file_store"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/server"
	"github.com/photolog-app/photolog/server/api"
	"github.com/photolog-app/photolog/stream"
	"github.com/photolog-app/photolog/utils"
	"github.com/photolog-app/photolog/utils/dotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

type testServer struct {
	db     *gorm.DB
	bus    *stream.Bus
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	db, _ := utils.CreateTempDB(t)

	bus := stream.NewBus()
	t.Cleanup(func() { bus.Close() })

	a := api.NewAPI(db, bus, file_store.NewFakeFileStore(), nil, nil)
	return &testServer{db: db, bus: bus, router: server.NewRouter(a, false)}
}

func (s *testServer) createUser(t *testing.T, name string) *model.User {
	t.Helper()
	user := &model.User{
		Id:    uuid.New().String(),
		Email: name + "@example.com",
		Name:  name,
		Gisu:  "12",
		Role:  model.RoleMember,
	}
	require.NoError(t, s.db.Create(user).Error)
	return user
}

// request performs an authenticated JSON request as the given user.
func (s *testServer) request(t *testing.T, user *model.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("sub", user.Id)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// uploadPhoto drives the multipart upload endpoint.
func (s *testServer) uploadPhoto(t *testing.T, user *model.User, desc string, tags []string) *model.Photo {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "photo.jpg")
	require.NoError(t, err)
	part.Write([]byte("not really a jpeg"))
	writer.WriteField("desc", desc)
	for _, tag := range tags {
		writer.WriteField("tags", tag)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/photos", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("sub", user.Id)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var photo model.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photo))
	return &photo
}

func (s *testServer) reloadUser(t *testing.T, id string) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, s.db.First(&user, "id = ?", id).Error)
	return &user
}

func (s *testServer) reloadPhoto(t *testing.T, id string) *model.Photo {
	t.Helper()
	var photo model.Photo
	require.NoError(t, s.db.First(&photo, "id = ?", id).Error)
	return &photo
}

func TestUploadPhotoAndFeed(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "업로더")

	photo := s.uploadPhoto(t, user, "수학여행", []string{"10기", "2"})
	require.NotEmpty(t, photo.Id)
	require.Equal(t, user.Id, photo.UploaderID)
	require.Equal(t, []string{"2", "10기"}, photo.TagList())
	require.Equal(t, 1, s.reloadUser(t, user.Id).UploadCount)

	w := s.request(t, user, http.MethodGet, "/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed struct {
		Photos []*model.Photo `json:"photos"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed.Photos, 1)
	require.Equal(t, photo.Id, feed.Photos[0].Id)
}

func TestToggleLikeMovesPairedCounters(t *testing.T) {
	s := newTestServer(t)
	uploader := s.createUser(t, "업로더")
	liker := s.createUser(t, "관객")
	photo := s.uploadPhoto(t, uploader, "", nil)

	w := s.request(t, liker, http.MethodPost, "/photos/"+photo.Id+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.reloadUser(t, liker.Id).GivenHeartCount)
	require.Equal(t, 1, s.reloadUser(t, uploader.Id).RxHeartCount)

	// Toggling again restores both counters.
	w = s.request(t, liker, http.MethodPost, "/photos/"+photo.Id+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, s.reloadUser(t, liker.Id).GivenHeartCount)
	require.Equal(t, 0, s.reloadUser(t, uploader.Id).RxHeartCount)
}

func TestLikePublishesMemberSnapshots(t *testing.T) {
	s := newTestServer(t)
	uploader := s.createUser(t, "업로더")
	liker := s.createUser(t, "관객")
	photo := s.uploadPhoto(t, uploader, "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := s.bus.Subscribe(ctx, model.TopicMembers)
	require.NoError(t, err)

	w := s.request(t, liker, http.MethodPost, "/photos/"+photo.Id+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Both sides of the heart show up on the member topic with their moved
	// counters, so open leaderboards stay current.
	seen := map[string]bool{}
	deadline := time.After(2 * time.Second)
	for !seen[liker.Id] || !seen[uploader.Id] {
		select {
		case e := <-events:
			if e.Kind != model.EventMemberUpdated {
				continue
			}
			payload, ok := e.Payload.(map[string]interface{})
			if !ok {
				continue
			}
			switch payload["id"] {
			case liker.Id:
				require.Equal(t, float64(1), payload["givenHeartCount"])
				seen[liker.Id] = true
			case uploader.Id:
				require.Equal(t, float64(1), payload["rxHeartCount"])
				seen[uploader.Id] = true
			}
		case <-deadline:
			t.Fatal("member snapshots were not published after the like")
		}
	}
}

func TestListMembersGisuFilter(t *testing.T) {
	s := newTestServer(t)
	twelve := s.createUser(t, "가")
	thirteen := s.createUser(t, "나")
	require.NoError(t, s.db.Model(thirteen).Update("gisu", "13").Error)

	// Gisu is stored and queried as raw digits.
	w := s.request(t, twelve, http.MethodGet, "/members?gisu=12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Members []*model.User `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Members, 1)
	require.Equal(t, twelve.Id, listing.Members[0].Id)

	w = s.request(t, twelve, http.MethodGet, "/members?gisu=13", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Members, 1)
	require.Equal(t, thirteen.Id, listing.Members[0].Id)
}

func TestUpdateTagsNoopAndIncrement(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "편집자")
	photo := s.uploadPhoto(t, user, "", []string{"10기", "2"})

	// Same normalized set in a different order is a no-op.
	w := s.request(t, user, http.MethodPut, "/photos/"+photo.Id+"/tags",
		model.UpdateTagsInput{Tags: []string{"2", "10기", "2"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, s.reloadUser(t, user.Id).TagEditCount)

	// A real change writes once and earns exactly one edit, no matter how
	// many tags moved.
	w = s.request(t, user, http.MethodPut, "/photos/"+photo.Id+"/tags",
		model.UpdateTagsInput{Tags: []string{"3", "강사", "소풍"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.reloadUser(t, user.Id).TagEditCount)
	require.Equal(t, []string{"3", "강사", "소풍"}, s.reloadPhoto(t, photo.Id).TagList())
}

func TestCommentLifecycle(t *testing.T) {
	s := newTestServer(t)
	uploader := s.createUser(t, "업로더")
	writer := s.createUser(t, "수다쟁이")
	photo := s.uploadPhoto(t, uploader, "", nil)

	w := s.request(t, writer, http.MethodPost, "/photos/"+photo.Id+"/comments",
		model.CreateCommentInput{Text: "우와 이 사진!"})
	require.Equal(t, http.StatusCreated, w.Code)
	var root model.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &root))
	require.NotEmpty(t, root.CreatedLabel)

	require.Equal(t, 1, s.reloadUser(t, writer.Id).CommentCount)
	require.Equal(t, 1, s.reloadUser(t, uploader.Id).RxCommentCount)
	reloaded := s.reloadPhoto(t, photo.Id)
	require.Equal(t, 1, reloaded.CommentsCount)
	require.NotNil(t, reloaded.LastCommentAt)

	// A reply to the root is fine, a reply to the reply is not.
	w = s.request(t, uploader, http.MethodPost, "/photos/"+photo.Id+"/comments",
		model.CreateCommentInput{Text: "고마워요", ParentID: &root.Id})
	require.Equal(t, http.StatusCreated, w.Code)
	var reply model.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))

	w = s.request(t, writer, http.MethodPost, "/photos/"+photo.Id+"/comments",
		model.CreateCommentInput{Text: "한 단계 더", ParentID: &reply.Id})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Deleting the root removes the reply too and walks every counter back.
	w = s.request(t, writer, http.MethodDelete, "/comments/"+root.Id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 0, s.reloadUser(t, writer.Id).CommentCount)
	require.Equal(t, 0, s.reloadUser(t, uploader.Id).CommentCount)
	require.Equal(t, 0, s.reloadUser(t, uploader.Id).RxCommentCount)
	emptied := s.reloadPhoto(t, photo.Id)
	require.Equal(t, 0, emptied.CommentsCount)
	require.Nil(t, emptied.LastCommentAt)
}

func TestDeleteCommentPermission(t *testing.T) {
	s := newTestServer(t)
	uploader := s.createUser(t, "업로더")
	writer := s.createUser(t, "작성자")
	stranger := s.createUser(t, "행인")
	photo := s.uploadPhoto(t, uploader, "", nil)

	w := s.request(t, writer, http.MethodPost, "/photos/"+photo.Id+"/comments",
		model.CreateCommentInput{Text: "안녕"})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment model.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))

	w = s.request(t, stranger, http.MethodDelete, "/comments/"+comment.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// An admin can remove anyone's comment.
	require.NoError(t, s.db.Model(stranger).Update("role", model.RoleAdmin).Error)
	w = s.request(t, stranger, http.MethodDelete, "/comments/"+comment.Id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestAlbumFlow(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "수집가")

	// First listing lazily creates the default album.
	w := s.request(t, user, http.MethodGet, "/albums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Albums []*model.Album `json:"albums"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Albums, 1)
	require.True(t, listing.Albums[0].IsDefault)
	require.Equal(t, model.DefaultAlbumName, listing.Albums[0].Name)
	defaultAlbum := listing.Albums[0]

	// Names are unique per owner.
	w = s.request(t, user, http.MethodPost, "/albums", model.CreateAlbumInput{Name: "여행"})
	require.Equal(t, http.StatusCreated, w.Code)
	var album model.Album
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &album))
	w = s.request(t, user, http.MethodPost, "/albums", model.CreateAlbumInput{Name: "여행"})
	require.Equal(t, http.StatusConflict, w.Code)

	// Membership toggles in and back out.
	photo := s.uploadPhoto(t, user, "", nil)
	path := fmt.Sprintf("/albums/%s/photos/%s", album.Id, photo.Id)
	w = s.request(t, user, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var toggled model.Album
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	require.Equal(t, []string{photo.Id}, toggled.PhotoIds)

	w = s.request(t, user, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	require.Empty(t, toggled.PhotoIds)

	// The default album refuses deletion, a normal one does not.
	w = s.request(t, user, http.MethodDelete, "/albums/"+defaultAlbum.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = s.request(t, user, http.MethodDelete, "/albums/"+album.Id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestAlbumIsPrivate(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "주인")
	other := s.createUser(t, "남")

	w := s.request(t, owner, http.MethodPost, "/albums", model.CreateAlbumInput{Name: "비밀"})
	require.Equal(t, http.StatusCreated, w.Code)
	var album model.Album
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &album))

	w = s.request(t, other, http.MethodGet, "/albums/"+album.Id+"/photos", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePhotoCascades(t *testing.T) {
	s := newTestServer(t)
	uploader := s.createUser(t, "업로더")
	other := s.createUser(t, "관객")
	photo := s.uploadPhoto(t, uploader, "", nil)

	// Hang a like, a comment and an album membership off the photo.
	w := s.request(t, other, http.MethodPost, "/photos/"+photo.Id+"/like", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.request(t, other, http.MethodPost, "/photos/"+photo.Id+"/comments",
		model.CreateCommentInput{Text: "멋져요"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.request(t, other, http.MethodGet, "/albums", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Albums []*model.Album `json:"albums"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	w = s.request(t, other, http.MethodPost,
		fmt.Sprintf("/albums/%s/photos/%s", listing.Albums[0].Id, photo.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// A stranger cannot delete, the uploader can.
	w = s.request(t, other, http.MethodDelete, "/photos/"+photo.Id, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	w = s.request(t, uploader, http.MethodDelete, "/photos/"+photo.Id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	require.Equal(t, 0, s.reloadUser(t, uploader.Id).UploadCount)

	var count int64
	s.db.Model(&model.Comment{}).Where("photo_id = ?", photo.Id).Count(&count)
	require.Zero(t, count)
	s.db.Model(&model.PhotoLike{}).Where("photo_id = ?", photo.Id).Count(&count)
	require.Zero(t, count)
	s.db.Model(&model.AlbumPhoto{}).Where("photo_id = ?", photo.Id).Count(&count)
	require.Zero(t, count)

	w = s.request(t, uploader, http.MethodGet, "/photos/"+photo.Id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateYearValidation(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "사람")
	photo := s.uploadPhoto(t, user, "", nil)

	w := s.request(t, user, http.MethodPatch, "/photos/"+photo.Id+"/year",
		model.UpdateYearInput{PhotoYear: "1999"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "1999", s.reloadPhoto(t, photo.Id).PhotoYear)

	w = s.request(t, user, http.MethodPatch, "/photos/"+photo.Id+"/year",
		model.UpdateYearInput{PhotoYear: "99"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Clearing the year is allowed.
	w = s.request(t, user, http.MethodPatch, "/photos/"+photo.Id+"/year",
		model.UpdateYearInput{PhotoYear: ""})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "", s.reloadPhoto(t, photo.Id).PhotoYear)
}

func TestUpdateDescOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "주인")
	other := s.createUser(t, "남")
	photo := s.uploadPhoto(t, owner, "원본", nil)

	w := s.request(t, other, http.MethodPatch, "/photos/"+photo.Id+"/description",
		model.UpdateDescInput{Desc: "바꿔치기"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = s.request(t, owner, http.MethodPatch, "/photos/"+photo.Id+"/description",
		model.UpdateDescInput{Desc: "수정본"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "수정본", s.reloadPhoto(t, photo.Id).Desc)
}

func TestRankingsEndpoint(t *testing.T) {
	s := newTestServer(t)
	busy := s.createUser(t, "가")
	idle := s.createUser(t, "나")
	s.uploadPhoto(t, busy, "", nil)

	w := s.request(t, idle, http.MethodGet, "/rankings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Type    string `json:"type"`
		Entries []struct {
			User  *model.User `json:"user"`
			Score int         `json:"score"`
			Rank  int         `json:"rank"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Equal(t, "total", board.Type)
	require.Len(t, board.Entries, 2)
	require.Equal(t, busy.Id, board.Entries[0].User.Id)
	require.Equal(t, 100, board.Entries[0].Score)

	w = s.request(t, busy, http.MethodGet, "/rankings/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var standing struct {
		Rank       int `json:"rank"`
		Total      int `json:"total"`
		TopPercent int `json:"topPercent"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &standing))
	require.Equal(t, 1, standing.Rank)
	require.Equal(t, 2, standing.Total)
	require.Equal(t, 50, standing.TopPercent)
}

func TestViewCountAndHotPhotos(t *testing.T) {
	s := newTestServer(t)
	user := s.createUser(t, "사람")
	photo := s.uploadPhoto(t, user, "", nil)

	for i := 0; i < 3; i++ {
		w := s.request(t, user, http.MethodPost, "/photos/"+photo.Id+"/view", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 3, s.reloadPhoto(t, photo.Id).ViewCount)

	w := s.request(t, user, http.MethodGet, "/rankings?type=hot_photo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Entries []struct {
			Photo *model.Photo `json:"photo"`
			Score int          `json:"score"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Entries, 1)
	require.Equal(t, 3, board.Entries[0].Score)
}

func TestResyncEndpointAdminOnly(t *testing.T) {
	s := newTestServer(t)
	member := s.createUser(t, "회원")
	admin := s.createUser(t, "관리자")
	require.NoError(t, s.db.Model(admin).Update("role", model.RoleAdmin).Error)

	w := s.request(t, member, http.MethodPost, "/admin/resync", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Skew a counter by hand, the resync puts it back.
	s.uploadPhoto(t, member, "", nil)
	require.NoError(t, s.db.Model(&model.User{Id: member.Id}).Update("upload_count", 42).Error)

	w = s.request(t, admin, http.MethodPost, "/admin/resync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, s.reloadUser(t, member.Id).UploadCount)
}
