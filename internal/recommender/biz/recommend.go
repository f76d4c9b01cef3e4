package biz

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/coursewise/course-recommender/internal/model"
	"github.com/coursewise/course-recommender/internal/recommender/store"
)

// digitRun matches the first maximal run of decimal digits in a document.
// Tagged titles carry the course id as such a run.
var digitRun = regexp.MustCompile(`\d+`)

// extractCandidateIDs pulls the course id out of each search hit and drops
// duplicates, keeping first-seen rank order. Hits without a digit run carry
// no id and are skipped.
func extractCandidateIDs(hits []*store.SearchResult) []int64 {
	seen := make(map[int64]struct{}, len(hits))
	ids := make([]int64, 0, len(hits))
	for _, hit := range hits {
		raw := digitRun.FindString(hit.Content)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			// A digit run too long for int64 cannot be a course id.
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// reorderByRank sorts courses by the semantic rank of their course id. Rows
// sharing a course id keep their relative catalog order.
func reorderByRank(courses []*model.Course, rankedIDs []int64) []*model.Course {
	rank := make(map[int64]int, len(rankedIDs))
	for i, id := range rankedIDs {
		rank[id] = i
	}

	ordered := make([]*model.Course, len(courses))
	copy(ordered, courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank[ordered[i].CourseID] < rank[ordered[j].CourseID]
	})
	return ordered
}
