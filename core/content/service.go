package content

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
	"github.com/trezcool/boletin/core/period"
	"github.com/trezcool/boletin/core/school"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		// CreateContent stores item with Order = max(order)+1 within (SubjectCourseID, Bimester); the given Order is ignored.
		CreateContent(ctx context.Context, item ContentItem, exec ...core.DBExecutor) (ContentItem, error)
		// GetContent returns a core.NotFoundError when id is unknown.
		GetContent(ctx context.Context, id string, exec ...core.DBExecutor) (ContentItem, error)
		QueryContents(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]ContentItem, error)
		DeactivateContent(ctx context.Context, id string, updatedAt time.Time, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		school   *school.Service
		resolver *period.Resolver
	}
)

func NewService(repo Repository, schoolSvc *school.Service) *Service {
	return &Service{
		repo:     repo,
		school:   schoolSvc,
		resolver: period.NewResolver(schoolSvc),
	}
}

// ResolvePeriod resolves date against the active cycle, or the cycle of year when year is set.
func (svc *Service) ResolvePeriod(ctx context.Context, date time.Time, year int) (period.Period, error) {
	if year == 0 {
		cycle, err := svc.school.ActiveCycle(ctx)
		if err != nil {
			return period.Period{}, errors.Wrap(err, "getting active cycle")
		}
		year = cycle.Year
	}
	return svc.resolver.Resolve(ctx, date, year)
}

func (svc *Service) Create(ctx context.Context, caller core.Caller, nc NewContent) (ContentItem, error) {
	if _, _, err := svc.school.CurrentSubjectCourse(ctx, nc.SubjectCourseID); err != nil {
		return ContentItem{}, errors.Wrap(err, "finding subject-course")
	}
	if err := svc.school.CheckTeaches(ctx, caller, nc.SubjectCourseID); err != nil {
		return ContentItem{}, err
	}

	item := ContentItem{
		SubjectCourseID: nc.SubjectCourseID,
		Title:           nc.Title,
		Description:     nc.Description,
		EvaluationType:  nc.EvaluationType,
	}
	return svc.insert(ctx, item, nc.ClassDate)
}

// Duplicate copies the description and evaluation type of an active ContentItem into a new one
// for a subject-course of the active cycle. Grades are never copied. Calling it twice creates two items.
func (svc *Service) Duplicate(ctx context.Context, caller core.Caller, dc DuplicateContent) (ContentItem, error) {
	src, err := svc.repo.GetContent(ctx, dc.SourceID)
	if err != nil {
		return ContentItem{}, errors.Wrap(err, "finding source content")
	}
	if !src.Active {
		return ContentItem{}, core.NewNotFoundError("content", dc.SourceID)
	}
	if _, _, err = svc.school.CurrentSubjectCourse(ctx, dc.SubjectCourseID); err != nil {
		return ContentItem{}, errors.Wrap(err, "finding destination subject-course")
	}
	if err = svc.school.CheckTeaches(ctx, caller, src.SubjectCourseID, dc.SubjectCourseID); err != nil {
		return ContentItem{}, err
	}

	item := ContentItem{
		SubjectCourseID: dc.SubjectCourseID,
		Title:           dc.Title,
		Description:     src.Description,
		EvaluationType:  src.EvaluationType,
	}
	return svc.insert(ctx, item, dc.ClassDate)
}

func (svc *Service) insert(ctx context.Context, item ContentItem, classDate string) (ContentItem, error) {
	date, err := period.ParseDate(classDate)
	if err != nil {
		return ContentItem{}, err
	}
	p, err := svc.ResolvePeriod(ctx, date, 0)
	if err != nil {
		return ContentItem{}, errors.Wrap(err, "resolving period")
	}

	now := NowFunc().UTC()
	item.Bimester = p.Bimester
	item.Intensification = p.IsIntensification
	item.ClassDate = date
	item.Active = true
	item.CreatedAt = now
	item.UpdatedAt = now

	item, err = svc.repo.CreateContent(ctx, item)
	if err != nil {
		return ContentItem{}, errors.Wrap(err, "creating content")
	}
	return item, nil
}

// Get also returns deactivated items, whose grades are still on record.
func (svc *Service) Get(ctx context.Context, caller core.Caller, id string) (ContentItem, error) {
	item, err := svc.repo.GetContent(ctx, id)
	if err != nil {
		return ContentItem{}, errors.Wrap(err, "finding content")
	}
	if err = svc.school.CheckTeaches(ctx, caller, item.SubjectCourseID); err != nil {
		return ContentItem{}, err
	}
	return item, nil
}

func (svc *Service) Query(ctx context.Context, caller core.Caller, filter QueryFilter, ordering []core.DBOrdering) ([]ContentItem, error) {
	if filter.SubjectCourseID == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "subject_course_id", Error: "this field is required"})
	}
	if filter.Bimester < 0 || filter.Bimester > 4 {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "bimester", Error: "bimester must be between 1 and 4"})
	}
	if err := svc.school.CheckTeaches(ctx, caller, filter.SubjectCourseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryContents(ctx, filter, core.FilterOrderings(ordering, OrderingFields...))
}

// Deactivate hides a ContentItem; its grades are kept.
func (svc *Service) Deactivate(ctx context.Context, caller core.Caller, id string) error {
	if _, err := svc.Get(ctx, caller, id); err != nil {
		return err
	}
	return svc.repo.DeactivateContent(ctx, id, NowFunc().UTC())
}
