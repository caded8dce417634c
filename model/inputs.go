package model

// Request bodies accepted by the API server.

type SignUpInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
	Gisu     string `json:"gisu"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	IdToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int32  `json:"expiresIn"`
}

type UpdateDescInput struct {
	Desc string `json:"desc" binding:"required"`
}

type UpdateYearInput struct {
	PhotoYear string `json:"photoYear"`
}

type UpdateTagsInput struct {
	Tags []string `json:"tags"`
}

type CreateCommentInput struct {
	Text     string  `json:"text" binding:"required"`
	ParentID *string `json:"parentId"`
}

type CreateAlbumInput struct {
	Name string `json:"name"`
}

type RenameAlbumInput struct {
	Name string `json:"name" binding:"required"`
}

type UpdateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

type DeepLinkInput struct {
	SessionID string `json:"sessionId" binding:"required"`
	PhotoID   string `json:"photoId"`
}
