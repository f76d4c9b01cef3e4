package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/kart-io/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coursewise/course-recommender/internal/model"
)

// Catalog implements CatalogStore on an in-memory SQLite database.
type Catalog struct {
	db *gorm.DB
}

var _ CatalogStore = (*Catalog)(nil)

// NewCatalog creates an empty in-memory catalog.
func NewCatalog() (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.AutoMigrate(&model.Course{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Load reads the catalog CSV into the store. The file must carry a header row
// with at least course_id, course_title and url columns; subject is optional.
// Rows with an unparsable course id are skipped.
func (c *Catalog) Load(ctx context.Context, csvPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"course_id", "course_title", "url"} {
		if _, ok := cols[required]; !ok {
			return fmt.Errorf("catalog csv is missing column %q", required)
		}
	}
	subjectCol, hasSubject := cols["subject"]

	// FieldsPerRecord is disabled, so a ragged row can be shorter than the
	// header and the required column indexes must be bounds-checked.
	minFields := cols["course_id"]
	for _, required := range []string{"course_title", "url"} {
		if cols[required] > minFields {
			minFields = cols[required]
		}
	}
	minFields++

	var courses []*model.Course
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read catalog row: %w", err)
		}

		if len(record) < minFields {
			logger.Warnw("skipping ragged catalog row", "fields", len(record), "expected", minFields)
			continue
		}

		courseID, err := strconv.ParseInt(strings.TrimSpace(record[cols["course_id"]]), 10, 64)
		if err != nil {
			logger.Warnw("skipping catalog row with invalid course id", "value", record[cols["course_id"]])
			continue
		}

		course := &model.Course{
			CourseID: courseID,
			Title:    record[cols["course_title"]],
			URL:      record[cols["url"]],
		}
		if hasSubject && subjectCol < len(record) {
			course.Subject = record[subjectCol]
			course.Category = model.CategoryForSubject(course.Subject)
		}
		courses = append(courses, course)
	}

	if len(courses) == 0 {
		return fmt.Errorf("catalog csv %s contains no rows", csvPath)
	}

	if err := c.db.WithContext(ctx).CreateInBatches(courses, 500).Error; err != nil {
		return fmt.Errorf("failed to insert catalog rows: %w", err)
	}

	logger.Infow("catalog loaded", "path", csvPath, "rows", len(courses))
	return nil
}

// FindByCourseIDs returns matching rows in native row order. The category
// predicate is applied in SQL, so NULL categories drop out for any concrete
// filter value.
func (c *Catalog) FindByCourseIDs(ctx context.Context, ids []int64, category string) ([]*model.Course, error) {
	if len(ids) == 0 {
		return []*model.Course{}, nil
	}

	query := c.db.WithContext(ctx).Where("course_id IN ?", ids)
	if category != model.CategoryAll {
		query = query.Where("category = ?", category)
	}

	var courses []*model.Course
	if err := query.Order("id").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	return courses, nil
}

// Count returns the number of catalog rows.
func (c *Catalog) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count catalog rows: %w", err)
	}
	return count, nil
}
