package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coursewise/course-recommender/internal/model"
	"github.com/coursewise/course-recommender/internal/recommender/store"
)

func hits(contents ...string) []*store.SearchResult {
	out := make([]*store.SearchResult, len(contents))
	for i, c := range contents {
		out[i] = &store.SearchResult{Content: c}
	}
	return out
}

func TestExtractCandidateIDs(t *testing.T) {
	ids := extractCandidateIDs(hits(
		"101 Build Modern Websites",
		"202 Stock Trading Basics",
		"303 Logo Design Masterclass",
	))
	assert.Equal(t, []int64{101, 202, 303}, ids)
}

func TestExtractCandidateIDsFirstDigitRunWins(t *testing.T) {
	ids := extractCandidateIDs(hits("42 Learn Python 3 in 30 Days"))
	assert.Equal(t, []int64{42}, ids)
}

func TestExtractCandidateIDsDropsUntagged(t *testing.T) {
	ids := extractCandidateIDs(hits(
		"101 Build Modern Websites",
		"a title with no identifier at all",
		"202 Stock Trading Basics",
	))
	assert.Equal(t, []int64{101, 202}, ids)
}

func TestExtractCandidateIDsDeduplicatesKeepingRank(t *testing.T) {
	ids := extractCandidateIDs(hits(
		"303 Logo Design Masterclass",
		"101 Build Modern Websites",
		"303 Logo Design Masterclass",
		"101 Build Modern Websites",
	))
	assert.Equal(t, []int64{303, 101}, ids)
}

func TestExtractCandidateIDsSkipsOverflowingRuns(t *testing.T) {
	ids := extractCandidateIDs(hits(
		"99999999999999999999999999 too long to be an id",
		"7 a real one",
	))
	assert.Equal(t, []int64{7}, ids)
}

func TestExtractCandidateIDsEmptyInput(t *testing.T) {
	assert.Empty(t, extractCandidateIDs(nil))
}

func TestReorderByRank(t *testing.T) {
	courses := []*model.Course{
		{CourseID: 101, Title: "first row"},
		{CourseID: 202, Title: "second row"},
		{CourseID: 303, Title: "third row"},
	}

	ordered := reorderByRank(courses, []int64{303, 101, 202})

	assert.Equal(t, int64(303), ordered[0].CourseID)
	assert.Equal(t, int64(101), ordered[1].CourseID)
	assert.Equal(t, int64(202), ordered[2].CourseID)

	// Input order is untouched.
	assert.Equal(t, int64(101), courses[0].CourseID)
}

func TestReorderByRankKeepsDuplicateRowOrder(t *testing.T) {
	courses := []*model.Course{
		{CourseID: 101, Title: "dup a"},
		{CourseID: 202, Title: "other"},
		{CourseID: 101, Title: "dup b"},
	}

	ordered := reorderByRank(courses, []int64{202, 101})

	assert.Equal(t, "other", ordered[0].Title)
	assert.Equal(t, "dup a", ordered[1].Title)
	assert.Equal(t, "dup b", ordered[2].Title)
}
