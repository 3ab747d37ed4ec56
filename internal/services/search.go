package services

import (
	"context"
	"fmt"
	"math"
	"stackqa/internal/models"
	"stackqa/internal/utils"
	"time"

	"gorm.io/gorm"
)

type Tab string

const (
	TabUnanswered Tab = "unanswered"
	TabActive     Tab = "active"
	TabNewest     Tab = "newest"
	TabScored     Tab = "scored"
)

// ParseTab falls back to newest for anything it does not recognise.
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabUnanswered, TabActive, TabNewest, TabScored:
		return Tab(s)
	}
	return TabNewest
}

// Feed windows, in days.
const (
	recentWindow = 3
	weekWindow   = 7
	monthWindow  = 31
)

const taggedWith = `questions.id IN (
	SELECT qt.question_id FROM question_tags qt
	JOIN tags t ON t.id = qt.tag_id
	WHERE t.name IN ?)`

const answerCount = `(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id)`

// ApplySort is the listing order: newest date first, then the less viewed,
// then the higher scored. id breaks the remaining ties so pages are stable.
func ApplySort(db *gorm.DB) *gorm.DB {
	return db.
		Order("questions.date DESC").
		Order("questions.views ASC").
		Order("questions.score DESC").
		Order("questions.id DESC")
}

// ApplyFilters ANDs together the filters present in q. Tags match if the
// question carries any of them. The title match is a case-sensitive substring.
func ApplyFilters(q utils.SearchQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(q.Tags) > 0 {
			db = db.Where(taggedWith, q.Tags)
		}
		if q.Title != "" {
			db = db.Where("strpos(questions.title, ?) > 0", q.Title)
		}
		if q.UserID != nil {
			db = db.Where("questions.profile_id = ?", *q.UserID)
		}
		if q.Username != "" {
			db = db.Where("questions.profile_id IN (SELECT id FROM profiles WHERE username = ?)", q.Username)
		}
		return db
	}
}

// ApplyTabView narrows an already filtered set to one tab.
func ApplyTabView(tab Tab) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch tab {
		case TabUnanswered:
			return db.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id)")
		case TabActive:
			return db.Where(answerCount + " > 0")
		case TabScored:
			return db.Where("questions.score > ?", 0)
		}
		return db
	}
}

// QuestionSet describes a filtered question listing. It holds no cursor:
// every Count/Page/All runs a fresh statement, so one set serves many pages.
type QuestionSet struct {
	db      *gorm.DB
	filters []func(*gorm.DB) *gorm.DB
}

func (s *QuestionSet) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Question{}).Scopes(s.filters...)
}

func (s *QuestionSet) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.query(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return total, nil
}

// Page returns the 1-based page of size questions.
func (s *QuestionSet) Page(ctx context.Context, page, size int) ([]models.Question, error) {
	if page < 1 {
		page = 1
	}
	return s.fetch(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Limit(size).Offset((page - 1) * size)
	})
}

func (s *QuestionSet) All(ctx context.Context) ([]models.Question, error) {
	return s.fetch(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (s *QuestionSet) fetch(ctx context.Context, window func(*gorm.DB) *gorm.DB) ([]models.Question, error) {
	questions := make([]models.Question, 0)
	if err := s.query(ctx).
		Scopes(ApplySort, window).
		Preload("Tags").
		Preload("Profile").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if err := fillAnswerCounts(s.db.WithContext(ctx), questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// fillAnswerCounts 批量填充问题的回答数量
func fillAnswerCounts(db *gorm.DB, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	ids := make([]uint, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}

	var results []struct {
		QuestionID uint
		Count      int
	}
	if err := db.Model(&models.Answer{}).
		Select("question_id, COUNT(*) AS count").
		Where("question_id IN ?", ids).
		Group("question_id").
		Scan(&results).Error; err != nil {
		return fmt.Errorf("count answers: %w", err)
	}

	counts := make(map[uint]int, len(results))
	for _, r := range results {
		counts[r.QuestionID] = r.Count
	}
	for i := range questions {
		questions[i].AnswerCount = counts[questions[i].ID]
	}
	return nil
}

// SearchPage is one page of a listing with its pagination metadata.
type SearchPage struct {
	Questions  []models.Question `json:"questions"`
	Query      utils.SearchQuery `json:"query"`
	Tab        Tab               `json:"tab,omitempty"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pagesize"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"total_pages"`
}

// SearchEngine turns search strings, tabs and profiles into question listings.
type SearchEngine struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSearchEngine(db *gorm.DB) *SearchEngine {
	return &SearchEngine{db: db, now: time.Now}
}

// Lookup parses raw and returns the matching set for tab.
func (e *SearchEngine) Lookup(raw string, tab string) (*QuestionSet, utils.SearchQuery) {
	q := utils.ParseQuery(raw)
	return &QuestionSet{
		db:      e.db,
		filters: []func(*gorm.DB) *gorm.DB{ApplyFilters(q), ApplyTabView(ParseTab(tab))},
	}, q
}

// Search runs Lookup and materialises one page of it.
func (e *SearchEngine) Search(ctx context.Context, raw, tab string, page, size int) (*SearchPage, error) {
	set, q := e.Lookup(raw, tab)
	result, err := paginate(ctx, set, page, size)
	if err != nil {
		return nil, err
	}
	result.Query = q
	result.Tab = ParseTab(tab)
	return result, nil
}

// Interesting: questions sharing a tag with anything the profile has asked.
func (e *SearchEngine) Interesting(profile *models.Profile) (*QuestionSet, error) {
	return e.feed(profile, 0, false)
}

// Recent: last 3 days, against the tags of the profile's last 3 days.
func (e *SearchEngine) Recent(profile *models.Profile) (*QuestionSet, error) {
	return e.feed(profile, recentWindow, true)
}

// ByWeek: last 7 days, against the tags of the profile's last 7 days.
func (e *SearchEngine) ByWeek(profile *models.Profile) (*QuestionSet, error) {
	return e.feed(profile, weekWindow, true)
}

// ByMonth: last 31 days, against the tags of everything the profile asked.
func (e *SearchEngine) ByMonth(profile *models.Profile) (*QuestionSet, error) {
	return e.feed(profile, monthWindow, false)
}

// Feed resolves a feed by its route name and materialises one page of it.
func (e *SearchEngine) Feed(ctx context.Context, profile *models.Profile, name string, page, size int) (*SearchPage, error) {
	feeds := map[string]func(*models.Profile) (*QuestionSet, error){
		"interesting": e.Interesting,
		"recent":      e.Recent,
		"week":        e.ByWeek,
		"month":       e.ByMonth,
	}
	build, ok := feeds[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown feed %q", ErrInvalidInput, name)
	}
	set, err := build(profile)
	if err != nil {
		return nil, err
	}
	return paginate(ctx, set, page, size)
}

// feed builds a shared-tag listing. days > 0 restricts candidates to that
// many days back from today (inclusive); windowOwn applies the same window
// to the profile's own questions when collecting its tags.
func (e *SearchEngine) feed(profile *models.Profile, days int, windowOwn bool) (*QuestionSet, error) {
	if profile.Anonymous() {
		return nil, ErrUnauthenticated
	}

	today := e.now().UTC()
	to := today.Format(time.DateOnly)
	from := today.AddDate(0, 0, -days).Format(time.DateOnly)

	ownTags := `SELECT own_qt.tag_id FROM question_tags own_qt
		JOIN questions own ON own.id = own_qt.question_id
		WHERE own.profile_id = ?`
	args := []any{profile.ID}
	if days > 0 && windowOwn {
		ownTags += " AND own.date BETWEEN ? AND ?"
		args = append(args, from, to)
	}
	shared := "questions.id IN (SELECT qt.question_id FROM question_tags qt WHERE qt.tag_id IN (" + ownTags + "))"

	filters := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Where(shared, args...) },
	}
	if days > 0 {
		filters = append(filters, func(db *gorm.DB) *gorm.DB {
			return db.Where("questions.date BETWEEN ? AND ?", from, to)
		})
	}
	return &QuestionSet{db: e.db, filters: filters}, nil
}

func paginate(ctx context.Context, set *QuestionSet, page, size int) (*SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}

	total, err := set.Count(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := set.Page(ctx, page, size)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}
	return &SearchPage{
		Questions:  questions,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
