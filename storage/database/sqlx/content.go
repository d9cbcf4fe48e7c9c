package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/content"
)

type contentRepository struct {
	baseRepository
}

var _ content.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db core.DB) *contentRepository {
	return &contentRepository{baseRepository{db: db}}
}

type contentRow struct {
	ID              string      `db:"id"`
	SubjectCourseID string      `db:"subject_course_id"`
	Bimester        int         `db:"bimester"`
	Title           string      `db:"title"`
	Description     null.String `db:"description"`
	EvaluationType  string      `db:"evaluation_type"`
	ClassDate       time.Time   `db:"class_date"`
	Order           int         `db:"item_order"`
	Intensification bool        `db:"intensification"`
	Active          bool        `db:"active"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row contentRow) unpack() content.ContentItem {
	return content.ContentItem{
		ID:              row.ID,
		SubjectCourseID: row.SubjectCourseID,
		Bimester:        row.Bimester,
		Title:           row.Title,
		Description:     row.Description.String,
		EvaluationType:  row.EvaluationType,
		ClassDate:       row.ClassDate.UTC(),
		Order:           row.Order,
		Intensification: row.Intensification,
		Active:          row.Active,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
	}
}

const contentColumns = `id, subject_course_id, bimester, title, description, evaluation_type, class_date,
	item_order, intensification, active, created_at, updated_at`

// columns accepted for ordering; `order` is stored as item_order
var contentOrderColumns = map[string]string{
	"bimester":   "bimester",
	"order":      "item_order",
	"class_date": "class_date",
	"title":      "title",
	"created_at": "created_at",
}

func (repo contentRepository) CreateContent(ctx context.Context, item content.ContentItem, exec ...core.DBExecutor) (content.ContentItem, error) {
	item.ID = uuid.New().String()

	err := repo.inTx(ctx, exec, func(tx core.DBExecutor) error {
		// serialize writers of the same (subject-course, bimester) so max(order)+1 stays unique
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2::text))`, item.SubjectCourseID, item.Bimester); err != nil {
			return errors.Wrap(err, "locking content order")
		}

		q := `
			INSERT INTO content_item (` + contentColumns + `)
			SELECT $1, $2, $3, $4, $5, $6, $7, COALESCE(MAX(item_order), 0) + 1, $8, $9, $10, $11
			FROM content_item
			WHERE subject_course_id = $2 AND bimester = $3
			RETURNING item_order`
		return tx.GetContext(ctx, &item.Order, q,
			item.ID, item.SubjectCourseID, item.Bimester, item.Title,
			null.NewString(item.Description, item.Description != ""), item.EvaluationType, item.ClassDate,
			item.Intensification, item.Active, item.CreatedAt, item.UpdatedAt,
		)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return content.ContentItem{}, core.NewConflictError("content order already taken, retry")
		}
		return content.ContentItem{}, errors.Wrap(err, "inserting content")
	}
	return item, nil
}

func (repo contentRepository) GetContent(ctx context.Context, id string, exec ...core.DBExecutor) (content.ContentItem, error) {
	if !isUUID(id) {
		return content.ContentItem{}, core.NewNotFoundError("content", id)
	}
	var row contentRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT `+contentColumns+` FROM content_item WHERE id = $1`, id); err != nil {
		return content.ContentItem{}, trapNoRowsErr(err, "content", id, "finding content")
	}
	return row.unpack(), nil
}

func (repo contentRepository) QueryContents(ctx context.Context, filter content.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]content.ContentItem, error) {
	var (
		where []string
		args  []interface{}
	)
	addArg := func(cond string, val interface{}) {
		args = append(args, val)
		where = append(where, strings.Replace(cond, "?", "$"+itoa(len(args)), 1))
	}

	if filter.SubjectCourseID != "" {
		if !isUUID(filter.SubjectCourseID) {
			return []content.ContentItem{}, nil
		}
		addArg("subject_course_id = ?", filter.SubjectCourseID)
	}
	if filter.Bimester != 0 {
		addArg("bimester = ?", filter.Bimester)
	}
	if !filter.IncludeInactive {
		where = append(where, "active")
	}

	q := `SELECT ` + contentColumns + ` FROM content_item`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}

	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := contentOrderColumns[ord.Field]; ok {
			orderList = append(orderList, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderList) == 0 {
		orderList = append(orderList, "bimester ASC", "item_order ASC")
	}
	q += ` ORDER BY ` + strings.Join(orderList, ", ")

	var rows []contentRow
	if err := repo.getExec(exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying contents")
	}
	items := make([]content.ContentItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.unpack())
	}
	return items, nil
}

func (repo contentRepository) DeactivateContent(ctx context.Context, id string, updatedAt time.Time, exec ...core.DBExecutor) error {
	if !isUUID(id) {
		return core.NewNotFoundError("content", id)
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `UPDATE content_item SET active = false, updated_at = $2 WHERE id = $1`, id, updatedAt)
	if err != nil {
		return errors.Wrap(err, "deactivating content")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewNotFoundError("content", id)
	}
	return nil
}
