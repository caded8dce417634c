package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
)

// SignUp registers a new member. The endpoint sits outside the JWT
// middleware.
func (api *API) SignUp(c *gin.Context) {
	var input model.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	user, err := api.Auth.SignUp(c.Request.Context(), &input)
	if err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	api.publishMember(model.EventMemberJoined, user)
	c.JSON(http.StatusCreated, user)
}

// SignIn exchanges credentials for a token pair. Outside the JWT middleware.
func (api *API) SignIn(c *gin.Context) {
	var input model.SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}

	tokens, err := api.Auth.SignIn(c.Request.Context(), &input)
	if err != nil {
		fail(c, http.StatusUnauthorized, utils.ErrorTokenAuthFail, err.Error())
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// SignOut revokes the caller's tokens globally.
func (api *API) SignOut(c *gin.Context) {
	token := c.GetHeader("token")
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "empty jwt token")
		return
	}

	if err := api.Auth.SignOut(c.Request.Context(), token); err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's mirrored user row.
func (api *API) Me(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}
