package webapisvc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/offline"
)

// Preloads wires the canned warm-up tasks onto a background preloader:
// likely-needed data is fetched ahead of navigation and written into the
// store so it is available offline.
type Preloads struct {
	pl     *offline.Preloader
	client *Client
	store  offline.Store
}

func NewPreloads(pl *offline.Preloader, client *Client, store offline.Store) *Preloads {
	return &Preloads{pl: pl, client: client, store: store}
}

// EssentialData warms the public course list plus its filter metadata.
// Scheduled high: it backs the landing page.
func (p *Preloads) EssentialData() {
	p.pl.Schedule("essential-data", offline.PriorityHigh, func(ctx context.Context) error {
		if err := p.fetchList(ctx, PublicCoursesPath(), offline.CollectionCourses); err != nil {
			return err
		}
		if err := p.fetchCached(ctx, CategoriesPath()); err != nil {
			return err
		}
		return p.fetchCached(ctx, DifficultiesPath())
	})
}

// CourseContent warms one course's detail, lessons and quizzes.
func (p *Preloads) CourseContent(courseID string) {
	p.pl.Schedule("course-content:"+courseID, offline.PriorityNormal, func(ctx context.Context) error {
		data, err := p.client.Get(ctx, CoursePath(courseID))
		if err != nil {
			return err
		}
		rec := offline.Record{ID: courseID, Data: data, StoredAt: time.Now().UTC()}
		if err = p.store.Put(ctx, offline.CollectionCourses, rec); err != nil {
			return err
		}

		if err = p.fetchList(ctx, LessonsByCoursePath(courseID), offline.CollectionLessons); err != nil {
			return err
		}
		return p.fetchList(ctx, QuizzesByCoursePath(courseID), offline.CollectionQuizzes)
	})
}

// UserProgress warms the student's progress snapshot. Low priority.
func (p *Preloads) UserProgress() {
	p.pl.Schedule("user-progress", offline.PriorityLow, func(ctx context.Context) error {
		return p.fetchList(ctx, MyProgressPath(), offline.CollectionUserProgress)
	})
}

// NextLesson warms the lesson after the current one, for mid-lesson
// look-ahead.
func (p *Preloads) NextLesson(courseID, currentLessonID string) {
	p.pl.Schedule("next-lesson:"+currentLessonID, offline.PriorityNormal, func(ctx context.Context) error {
		data, err := p.client.Get(ctx, LessonsByCoursePath(courseID))
		if err != nil {
			return err
		}
		var lessons []struct {
			ID json.Number `json:"id"`
		}
		if err = json.Unmarshal(data, &lessons); err != nil {
			return errors.Wrap(err, "decoding lessons")
		}

		var raw []json.RawMessage
		if err = json.Unmarshal(data, &raw); err != nil {
			return errors.Wrap(err, "decoding lessons")
		}
		for i, lesson := range lessons {
			if lesson.ID.String() == currentLessonID && i+1 < len(raw) {
				rec := offline.Record{
					ID:       lessons[i+1].ID.String(),
					Data:     raw[i+1],
					StoredAt: time.Now().UTC(),
				}
				return p.store.Put(ctx, offline.CollectionLessons, rec)
			}
		}
		return nil
	})
}

// fetchList fetches a JSON array and upserts each element into the
// collection keyed by its "id" field.
func (p *Preloads) fetchList(ctx context.Context, path, collection string) error {
	data, err := p.client.Get(ctx, path)
	if err != nil {
		return err
	}

	var items []json.RawMessage
	if err = json.Unmarshal(data, &items); err != nil {
		return errors.Wrapf(err, "decoding %s", path)
	}
	now := time.Now().UTC()
	recs := make([]offline.Record, 0, len(items))
	for _, item := range items {
		var keyed struct {
			ID json.Number `json:"id"`
		}
		if err = json.Unmarshal(item, &keyed); err != nil || keyed.ID.String() == "" {
			continue // unkeyed elements cannot be stored
		}
		recs = append(recs, offline.Record{ID: keyed.ID.String(), Data: item, StoredAt: now})
	}
	return p.store.Put(ctx, collection, recs...)
}

// fetchCached fetches one response and stores it verbatim in the API cache
// keyed by its path, the same key the gateway uses.
func (p *Preloads) fetchCached(ctx context.Context, path string) error {
	data, err := p.client.Get(ctx, path)
	if err != nil {
		return err
	}
	rec := offline.Record{ID: "GET " + path, Data: data, StoredAt: time.Now().UTC()}
	return p.store.Put(ctx, offline.CollectionAPICache, rec)
}
