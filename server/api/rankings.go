package api

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/photolog-app/photolog/model"
	"github.com/photolog-app/photolog/resync"
	"github.com/photolog-app/photolog/scoring"
	"github.com/photolog-app/photolog/utils"
	Logger "github.com/photolog-app/photolog/utils/log"
)

const leaderboardSize = 30

// rankedEntries loads all members and ranks them for the requested board.
func (api *API) rankedEntries(rankType string) ([]*scoring.Entry, error) {
	var users []*model.User
	if err := api.DB.Find(&users).Error; err != nil {
		return nil, err
	}

	live, err := scoring.CollectLiveStats(api.DB)
	if err != nil {
		return nil, err
	}

	switch rankType {
	case "upload":
		return scoring.Rank(users, live, scoring.UploadCount), nil
	case "popular":
		return scoring.Rank(users, live, scoring.PopularityScore), nil
	case "talker":
		return scoring.Rank(users, live, scoring.TalkerScore), nil
	default:
		return scoring.Rank(users, live, scoring.Score), nil
	}
}

// Rankings serves a leaderboard. type selects the board, hot_photo ranks
// photos instead of members.
func (api *API) Rankings(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}

	rankType := c.DefaultQuery("type", "total")
	switch rankType {
	case "total", "upload", "popular", "talker":
	case "hot_photo":
		api.hotPhotos(c)
		return
	default:
		fail(c, http.StatusBadRequest, utils.ErrorInvalidInput, "unknown ranking type: "+rankType)
		return
	}

	entries, err := api.rankedEntries(rankType)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}

	c.JSON(http.StatusOK, gin.H{"type": rankType, "entries": entries})
}

// hotPhotos ranks photos by views and comment activity.
func (api *API) hotPhotos(c *gin.Context) {
	var photos []*model.Photo
	if err := api.DB.Preload("Likes").Find(&photos).Error; err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	type photoEntry struct {
		Photo *model.Photo `json:"photo"`
		Score int          `json:"score"`
		Rank  int          `json:"rank"`
	}
	entries := make([]*photoEntry, 0, len(photos))
	for _, p := range photos {
		p.FillLikeIds()
		entries = append(entries, &photoEntry{Photo: p, Score: scoring.HotPhotoScore(p)})
	}

	// Highest score first, newest photo on equal scores.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Photo.Cursor > entries[j].Photo.Cursor
	})
	for i, e := range entries {
		if i > 0 && e.Score == entries[i-1].Score {
			e.Rank = entries[i-1].Rank
		} else {
			e.Rank = i + 1
		}
	}
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}

	c.JSON(http.StatusOK, gin.H{"type": "hot_photo", "entries": entries})
}

// MyRanking serves the caller's standing on the total board.
func (api *API) MyRanking(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}

	entries, err := api.rankedEntries("total")
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}

	standing := scoring.RankOf(entries, user.Id)
	if standing == nil {
		fail(c, http.StatusNotFound, utils.ErrorNotFound, "no standing for caller")
		return
	}
	c.JSON(http.StatusOK, standing)
}

// RankingsSummary serves distribution stats over the total board.
func (api *API) RankingsSummary(c *gin.Context) {
	if _, ok := api.currentUser(c); !ok {
		return
	}

	entries, err := api.rankedEntries("total")
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	c.JSON(http.StatusOK, scoring.Summarize(entries))
}

// Resync rebuilds every denormalized counter from the raw rows, admins only.
func (api *API) Resync(c *gin.Context) {
	user, ok := api.currentUser(c)
	if !ok {
		return
	}
	if !user.IsAdmin() {
		fail(c, http.StatusForbidden, utils.ErrorForbidden, "admin only")
		return
	}

	report, err := resync.Run(api.DB)
	if err != nil {
		fail(c, http.StatusInternalServerError, utils.ErrorInternal, err.Error())
		return
	}
	Logger.Log.Info("resync finished: ", report.UsersChanged, " users and ", report.PhotosChanged, " photos corrected")

	c.JSON(http.StatusOK, report)
}
