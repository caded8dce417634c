package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/file_store"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/server/auth"
	"github.com/photolog-app/photolog/stream"
	"github.com/photolog-app/photolog/utils"
	Logger "github.com/photolog-app/photolog/utils/log"
	"gorm.io/gorm"
)

// API holds every dependency the http handlers need. One instance serves all
// requests.
type API struct {
	DB        *gorm.DB
	Bus       *stream.Bus
	Files     file_store.PhotoFileStore
	Auth      *auth.Service
	DeepLinks *utils.DeepLinkStore
}

func NewAPI(db *gorm.DB, bus *stream.Bus, files file_store.PhotoFileStore, authSvc *auth.Service, deepLinks *utils.DeepLinkStore) *API {
	return &API{
		DB:        db,
		Bus:       bus,
		Files:     files,
		Auth:      authSvc,
		DeepLinks: deepLinks,
	}
}

// currentUserId reads the subject the JWT middleware stamped on the request.
func currentUserId(c *gin.Context) string {
	return c.GetHeader("sub")
}

// currentUser loads the caller's mirrored user row. A valid token whose row
// is missing means the sign-up flow never finished, treat as unauthorized.
func (api *API) currentUser(c *gin.Context) (*model.User, bool) {
	id := currentUserId(c)
	if id == "" {
		fail(c, http.StatusUnauthorized, utils.ErrorTokenAuthFail, "not signed in")
		return nil, false
	}
	var user model.User
	if err := api.DB.First(&user, "id = ?", id).Error; err != nil {
		fail(c, http.StatusUnauthorized, utils.ErrorTokenAuthFail, "unknown user")
		return nil, false
	}
	return &user, true
}

// loadPhoto fetches one photo with its like set preloaded.
func (api *API) loadPhoto(c *gin.Context, id string) (*model.Photo, bool) {
	var photo model.Photo
	err := api.DB.Preload("Likes").First(&photo, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "photo not found")
		return nil, false
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return nil, false
	}
	photo.FillLikeIds()
	return &photo, true
}

func fail(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, gin.H{"code": code, "msg": msg})
	c.Abort()
}

// publish pushes an event onto the bus, logging instead of failing the
// request. Realtime delivery is best effort, the REST response is the source
// of truth for the caller.
func (api *API) publish(e *model.Event) {
	if err := api.Bus.Publish(e); err != nil {
		Logger.Log.Error("fail to publish event ", e.Kind, " on ", e.Topic, ": ", err)
	}
}

// publishPhoto snapshots one photo to its detail topic and the shared feed
// topic.
func (api *API) publishPhoto(kind string, photo *model.Photo) {
	photo.FillLikeIds()
	api.publish(&model.Event{Kind: kind, Topic: model.PhotoTopic(photo.Id), Payload: photo})
	api.publish(&model.Event{Kind: kind, Topic: model.TopicPhotos, Payload: photo})
}

// publishPhotoTombstone closes detail views bound to a deleted photo.
func (api *API) publishPhotoTombstone(photoId string) {
	api.publish(&model.Event{Kind: model.EventPhotoDeleted, Topic: model.PhotoTopic(photoId), Deleted: true})
	api.publish(&model.Event{Kind: model.EventPhotoDeleted, Topic: model.TopicPhotos, Deleted: true, Payload: gin.H{"id": photoId}})
}

// publishComments snapshots a photo's full comment list.
func (api *API) publishComments(photoId string, comments []*model.Comment) {
	api.publish(&model.Event{Kind: model.EventCommentsSynced, Topic: model.CommentTopic(photoId), Payload: comments})
}

// publishAlbums snapshots a user's full album list to their private topic.
func (api *API) publishAlbums(userId string, albums []*model.Album) {
	api.publish(&model.Event{Kind: model.EventAlbumsUpdated, Topic: model.AlbumTopic(userId), Payload: albums})
}

// publishMember snapshots one member row to the shared member topic.
func (api *API) publishMember(kind string, user *model.User) {
	api.publish(&model.Event{Kind: kind, Topic: model.TopicMembers, Payload: user})
}

// syncMembers reloads member rows after their counters moved and republishes
// them, so subscribed leaderboards stay current.
func (api *API) syncMembers(userIds ...string) {
	for _, id := range userIds {
		var user model.User
		if err := api.DB.First(&user, "id = ?", id).Error; err != nil {
			Logger.Log.Error("fail to reload member ", id, " for sync: ", err)
			continue
		}
		api.publishMember(model.EventMemberUpdated, &user)
	}
}
