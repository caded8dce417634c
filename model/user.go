package model

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

/*

User is a community member.

Id: primary key, the identity provider subject (Cognito sub)
Email: sign-in email
Name: display name
Gisu: cohort number the member belongs to, kept as the raw string the
      member typed at sign-up
Role: "member" or "admin"

The remaining fields are activity counters feeding the leaderboard score.
They are maintained transactionally by every mutation that awards or
revokes points, never go below zero, and can be rebuilt from a full scan
by the resync operation.

*/
type User struct {
	Id        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Gisu      string    `json:"gisu"`
	Role      string    `gorm:"default:member" json:"role"`

	UploadCount     int `json:"uploadCount"`
	RxHeartCount    int `json:"rxHeartCount"`
	RxCommentCount  int `json:"rxCommentCount"`
	CommentCount    int `json:"commentCount"`
	GivenHeartCount int `json:"givenHeartCount"`
	TagEditCount    int `json:"tagEditCount"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
