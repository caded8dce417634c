package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
	"gorm.io/gorm"
)

// CaptureDeepLink remembers which photo an unauthenticated visitor tried to
// open, keyed by their browser session. Sits outside the JWT middleware.
func (api *API) CaptureDeepLink(c *gin.Context) {
	var input model.DeepLinkInput
	if err := c.ShouldBindJSON(&input); err != nil || input.PhotoID == "" {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "sessionId and photoId are required")
		return
	}

	if err := api.DeepLinks.Capture(c.Request.Context(), input.SessionID, input.PhotoID); err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// ConsumeDeepLink returns and clears the captured photo id for the caller's
// session. Each capture is consumed at most once, and a link whose photo was
// deleted in the meantime consumes to nothing.
func (api *API) ConsumeDeepLink(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}

	var input model.DeepLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	photoId, err := api.DeepLinks.Consume(c.Request.Context(), input.SessionID)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	if photoId != "" {
		err := api.DB.First(&model.Photo{}, "id = ?", photoId).Error
		if err == gorm.ErrRecordNotFound {
			photoId = ""
		} else if err != nil {
			fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"photoId": photoId})
}
