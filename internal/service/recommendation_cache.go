package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// courseRevisionTTL only bounds how long an idle course keeps its stamp. An
// expired stamp reads as empty, which no longer matches any cached entry.
const courseRevisionTTL = 7 * 24 * time.Hour

// cachedRecommendations remembers which course revision a list was built at.
type cachedRecommendations struct {
	Revision string           `json:"revision"`
	Items    []Recommendation `json:"items"`
}

func recommendationsKey(studentID, courseID uuid.UUID) string {
	return fmt.Sprintf("recommendations:%s:%s", studentID, courseID)
}

func courseRevisionKey(courseID uuid.UUID) string {
	return fmt.Sprintf("recommendations_rev:%s", courseID)
}

func courseRevision(ctx context.Context, cache Cache, courseID uuid.UUID) string {
	data, ok := cache.Get(ctx, courseRevisionKey(courseID))
	if !ok {
		return ""
	}
	return string(data)
}

// bumpCourseRevision marks every cached recommendation list of a course as
// stale. Per-student entries are left to expire on their own.
func bumpCourseRevision(ctx context.Context, cache Cache, courseID uuid.UUID, now time.Time) {
	cache.Set(ctx, courseRevisionKey(courseID), []byte(strconv.FormatInt(now.UnixNano(), 10)), courseRevisionTTL)
}

func decodeRecommendations(data []byte, revision string) ([]Recommendation, bool) {
	var cached cachedRecommendations
	if err := json.Unmarshal(data, &cached); err != nil || cached.Revision != revision {
		return nil, false
	}
	return cached.Items, true
}
