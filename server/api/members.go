package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/utils"
)

// ListMembers serves the member directory with optional name search and gisu
// filter.
func (api *API) ListMembers(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}

	query := api.DB.Model(&model.User{})
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	// Gisu is stored as the raw digits the member signed up with.
	if gisu := c.Query("gisu"); gisu != "" {
		query = query.Where("gisu = ?", gisu)
	}

	var members []*model.User
	if err := query.Order("name asc").Find(&members).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// MemberPhotos serves one member's gallery, newest first.
func (api *API) MemberPhotos(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}

	var member model.User
	if err := api.DB.First(&member, "id = ?", c.Param("id")).Error; err != nil {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "member not found")
		return
	}

	var photos []*model.Photo
	err := api.DB.Preload("Likes").
		Where("uploader_id = ?", member.Id).
		Order("cursor desc").
		Find(&photos).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	for _, p := range photos {
		p.FillLikeIds()
	}

	c.JSON(http.StatusOK, gin.H{"member": member, "photos": photos})
}

// ToggleRole promotes or demotes a member, admins only.
func (api *API) ToggleRole(c *gin.Context) {
	caller, ok := api.currentUser(c)
	if !ok {
		return
	}
	if !caller.IsAdmin() {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "admin only")
		return
	}

	var input model.UpdateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, err.Error())
		return
	}
	if !utils.ContainsString([]string{model.RoleMember, model.RoleAdmin}, input.Role) {
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "unknown role: "+input.Role)
		return
	}

	var member model.User
	if err := api.DB.First(&member, "id = ?", c.Param("id")).Error; err != nil {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "member not found")
		return
	}

	if err := api.DB.Model(&member).Update("role", input.Role).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	member.Role = input.Role

	api.publishMember(model.EventMemberUpdated, &member)
	c.JSON(http.StatusOK, member)
}
