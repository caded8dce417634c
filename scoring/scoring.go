package scoring

import (
	"math"
	"sort"

	"github.com/photolog-app/photolog/model"
	"gorm.io/gorm"
)

// Point weights for each counted activity.
const (
	PointsUpload    = 100
	PointsRxComment = 10
	PointsWrComment = 20
	PointsRxHeart   = 3
	PointsGvHeart   = 5
	PointsTagEdit   = 20

	// A comment on a hot photo weighs ten views.
	hotPhotoCommentWeight = 10
)

// Counters is the activity tally a score is computed from.
type Counters struct {
	Upload    int
	RxComment int
	WrComment int
	RxHeart   int
	GvHeart   int
	TagEdit   int
}

// LiveStats is recomputed from the photo table on demand, used as fallback
// when a user's stored counters were never populated (accounts that predate
// counter tracking).
type LiveStats struct {
	UploadCount    int
	RxHeartCount   int
	RxCommentCount int
}

// PhotoStat is one photo's contribution to its uploader's live stats.
type PhotoStat struct {
	UploaderID    string
	LikeCount     int
	CommentsCount int
}

// CollectLiveStats scans all photos and aggregates per-uploader stats.
func CollectLiveStats(db *gorm.DB) (map[string]*LiveStats, error) {
	var stats []PhotoStat
	err := db.Model(&model.Photo{}).
		Select("photos.uploader_id, count(photo_likes.user_id) as like_count, photos.comments_count").
		Joins("left join photo_likes on photo_likes.photo_id = photos.id").
		Group("photos.id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	res := make(map[string]*LiveStats)
	for _, s := range stats {
		live, ok := res[s.UploaderID]
		if !ok {
			live = &LiveStats{}
			res[s.UploaderID] = live
		}
		live.UploadCount++
		live.RxHeartCount += s.LikeCount
		live.RxCommentCount += s.CommentsCount
	}
	return res, nil
}

// counters picks the stored counters when any photo-derived one is set,
// otherwise falls back to the live scan.
func counters(u *model.User, live *LiveStats) Counters {
	c := Counters{
		Upload:    u.UploadCount,
		RxComment: u.RxCommentCount,
		WrComment: u.CommentCount,
		RxHeart:   u.RxHeartCount,
		GvHeart:   u.GivenHeartCount,
		TagEdit:   u.TagEditCount,
	}
	if c.Upload == 0 && c.RxHeart == 0 && c.RxComment == 0 && live != nil {
		c.Upload = live.UploadCount
		c.RxHeart = live.RxHeartCount
		c.RxComment = live.RxCommentCount
	}
	return c
}

// Score is the total activity score shown on the leaderboard.
func Score(u *model.User, live *LiveStats) int {
	c := counters(u, live)
	return c.Upload*PointsUpload +
		c.RxComment*PointsRxComment +
		c.WrComment*PointsWrComment +
		c.RxHeart*PointsRxHeart +
		c.GvHeart*PointsGvHeart +
		c.TagEdit*PointsTagEdit
}

// PopularityScore ranks by hearts and comments received, at their point
// weights.
func PopularityScore(u *model.User, live *LiveStats) int {
	c := counters(u, live)
	return c.RxHeart*PointsRxHeart + c.RxComment*PointsRxComment
}

// TalkerScore ranks by comments written and hearts given, at their point
// weights.
func TalkerScore(u *model.User, live *LiveStats) int {
	c := counters(u, live)
	return c.WrComment*PointsWrComment + c.GvHeart*PointsGvHeart
}

// UploadCount ranks by photos uploaded.
func UploadCount(u *model.User, live *LiveStats) int {
	return counters(u, live).Upload
}

// HotPhotoScore ranks photos themselves rather than members.
func HotPhotoScore(p *model.Photo) int {
	return p.ViewCount + p.CommentsCount*hotPhotoCommentWeight
}

// Entry is one leaderboard row.
type Entry struct {
	User  *model.User `json:"user"`
	Score int         `json:"score"`
	Rank  int         `json:"rank"`
}

// Rank orders users by score descending, name ascending on equal scores.
// Users with equal scores share a rank number, the rank of the first entry
// holding that score.
func Rank(users []*model.User, live map[string]*LiveStats, score func(*model.User, *LiveStats) int) []*Entry {
	entries := make([]*Entry, 0, len(users))
	for _, u := range users {
		entries = append(entries, &Entry{User: u, Score: score(u, live[u.Id])})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].User.Name < entries[j].User.Name
	})
	for i, e := range entries {
		if i > 0 && e.Score == entries[i-1].Score {
			e.Rank = entries[i-1].Rank
		} else {
			e.Rank = i + 1
		}
	}
	return entries
}

// Standing describes where one member sits in a ranking.
type Standing struct {
	Rank       int `json:"rank"`
	Total      int `json:"total"`
	Score      int `json:"score"`
	TopPercent int `json:"topPercent"`
}

// RankOf returns the standing of userId inside pre-ranked entries, or nil if
// the user is absent.
func RankOf(entries []*Entry, userId string) *Standing {
	for _, e := range entries {
		if e.User.Id == userId {
			return &Standing{
				Rank:       e.Rank,
				Total:      len(entries),
				Score:      e.Score,
				TopPercent: int(math.Ceil(float64(e.Rank) / float64(len(entries)) * 100)),
			}
		}
	}
	return nil
}
