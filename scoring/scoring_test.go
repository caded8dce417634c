package scoring

import (
	"testing"

	"github.com/photolog-app/photolog/model"
	"github.com/stretchr/testify/require"
)

func TestScoreFromStoredCounters(t *testing.T) {
	u := &model.User{
		Id:              "u1",
		Name:            "혜진",
		UploadCount:     2,
		RxHeartCount:    5,
		RxCommentCount:  3,
		CommentCount:    1,
		GivenHeartCount: 4,
	}
	// 2*100 + 5*3 + 3*10 + 1*20 + 4*5 = 285
	require.Equal(t, 285, Score(u, nil))
}

func TestScoreLiveFallback(t *testing.T) {
	u := &model.User{Id: "u1", Name: "동현", CommentCount: 1}
	live := &LiveStats{UploadCount: 1, RxHeartCount: 2, RxCommentCount: 1}

	// Stored photo counters are all zero, so the live scan wins:
	// 1*100 + 2*3 + 1*10 + 1*20 = 136
	require.Equal(t, 136, Score(u, live))

	// Any non-zero stored photo counter switches back to stored.
	u.UploadCount = 1
	require.Equal(t, 100+20, Score(u, live))
}

func TestBoardScoreWeights(t *testing.T) {
	// Popularity weighs received hearts and comments: 2*3 + 4*10 = 46.
	popular := &model.User{Id: "u1", Name: "수민", RxHeartCount: 2, RxCommentCount: 4}
	require.Equal(t, 46, PopularityScore(popular, nil))

	// Talker weighs written comments and given hearts: 5*20 + 3*5 = 115.
	talker := &model.User{Id: "u2", Name: "지훈", CommentCount: 5, GivenHeartCount: 3}
	require.Equal(t, 115, TalkerScore(talker, nil))
}

func TestPopularityOrdering(t *testing.T) {
	// Ten received comments are worth far more than one received heart.
	users := []*model.User{
		{Id: "a", Name: "가", UploadCount: 1, RxHeartCount: 1},
		{Id: "b", Name: "나", UploadCount: 1, RxCommentCount: 10},
	}

	entries := Rank(users, nil, PopularityScore)
	require.Equal(t, "b", entries[0].User.Id)
	require.Equal(t, 100, entries[0].Score)
	require.Equal(t, "a", entries[1].User.Id)
	require.Equal(t, 3, entries[1].Score)
}

func TestRankSharesTies(t *testing.T) {
	users := []*model.User{
		{Id: "a", Name: "가", UploadCount: 1},
		{Id: "b", Name: "나", UploadCount: 1},
		{Id: "c", Name: "다", UploadCount: 2},
		{Id: "d", Name: "라"},
	}

	entries := Rank(users, nil, Score)
	require.Len(t, entries, 4)
	require.Equal(t, "c", entries[0].User.Id)
	require.Equal(t, 1, entries[0].Rank)

	// a and b tie at 100 points and share rank 2, name breaks the order.
	require.Equal(t, "a", entries[1].User.Id)
	require.Equal(t, 2, entries[1].Rank)
	require.Equal(t, "b", entries[2].User.Id)
	require.Equal(t, 2, entries[2].Rank)

	require.Equal(t, 4, entries[3].Rank)
}

func TestRankOf(t *testing.T) {
	users := []*model.User{
		{Id: "a", Name: "가", UploadCount: 3},
		{Id: "b", Name: "나", UploadCount: 2},
		{Id: "c", Name: "다", UploadCount: 1},
	}
	entries := Rank(users, nil, Score)

	standing := RankOf(entries, "b")
	require.NotNil(t, standing)
	require.Equal(t, 2, standing.Rank)
	require.Equal(t, 3, standing.Total)
	require.Equal(t, 200, standing.Score)
	require.Equal(t, 67, standing.TopPercent)

	require.Nil(t, RankOf(entries, "nobody"))
}

func TestHotPhotoScore(t *testing.T) {
	p := &model.Photo{ViewCount: 7, CommentsCount: 3}
	require.Equal(t, 37, HotPhotoScore(p))
}

func TestSummarize(t *testing.T) {
	entries := []*Entry{
		{Score: 100},
		{Score: 200},
		{Score: 300},
		{Score: 400},
	}
	s := Summarize(entries)
	require.Equal(t, 4, s.Members)
	require.Equal(t, 250.0, s.Mean)
	require.Equal(t, 400, s.Max)

	require.Equal(t, &SummaryStats{}, Summarize(nil))
}
