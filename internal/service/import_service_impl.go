package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
	"github.com/sinaulab/sinau/internal/importer"
	"github.com/sinaulab/sinau/internal/repository"
)

type importService struct {
	settings
	uow     db.UnitOfWork
	content repository.ContentRepo
}

func NewImportService(uow db.UnitOfWork, content repository.ContentRepo, opts ...Option) ImportService {
	return &importService{settings: newSettings(opts), uow: uow, content: content}
}

func (s *importService) ImportCourse(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadCourseSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *importService) ImportCourseFromSchema(ctx context.Context, schema *importer.CourseSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

// importSchema writes the whole course in one transaction; any failure leaves
// the database untouched.
func (s *importService) importSchema(ctx context.Context, schema *importer.CourseSchema) (res *ImportResult, err error) {
	done := observe(ctx, s.observer, "import_course", map[string]any{})
	defer func() { done(err) }()

	if errs := importer.ValidateCourseSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	course, err := importer.Convert(schema, s.clock())
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w: %w", domain.ErrValidation, err)
	}

	res = &ImportResult{ModuleCount: len(course.Modules), UnitCount: course.UnitCount(), UserCount: len(course.Users)}
	err = s.runInTx(ctx, s.uow, "import_course", func(ctx context.Context, tx db.DBTX) error {
		content := repository.NewSQLContentRepo(tx)
		users := repository.NewSQLUserRepo(tx)
		videos := 0
		for _, m := range course.Modules {
			n, err := persistModule(ctx, content, m)
			if err != nil {
				return err
			}
			videos += n
		}
		for _, u := range course.Users {
			if err := users.Create(ctx, u); err != nil {
				return fmt.Errorf("creating user %q: %w", u.ID, err)
			}
		}
		res.VideoCount = videos
		return nil
	})
	if err != nil {
		return nil, err
	}

	modules, listErr := s.content.ListModules(ctx)
	if listErr != nil {
		s.invalidateStandings(ctx)
	} else {
		ids := make([]string, 0, len(modules))
		for _, m := range modules {
			ids = append(ids, m.ID)
		}
		s.invalidateStandings(ctx, ids...)
	}
	return res, nil
}

func persistModule(ctx context.Context, content repository.ContentRepo, m *domain.ModuleContent) (int, error) {
	if err := content.CreateModule(ctx, m.Module); err != nil {
		return 0, fmt.Errorf("creating module %q: %w", m.Module.ID, err)
	}
	for _, u := range m.Cpmks {
		if err := content.CreateCpmk(ctx, u); err != nil {
			return 0, fmt.Errorf("creating cpmk %q: %w", u.ID, err)
		}
	}
	for _, u := range m.LearningObjectives {
		if err := content.CreateLearningObjective(ctx, u); err != nil {
			return 0, fmt.Errorf("creating learning objective %q: %w", u.ID, err)
		}
	}
	for _, u := range m.Materials {
		if err := content.CreateMaterial(ctx, u); err != nil {
			return 0, fmt.Errorf("creating material %q: %w", u.ID, err)
		}
	}
	for _, u := range m.Enrichments {
		if err := content.CreateEnrichment(ctx, u); err != nil {
			return 0, fmt.Errorf("creating enrichment %q: %w", u.ID, err)
		}
	}
	for _, v := range m.Videos {
		if err := content.CreateEnrichmentVideo(ctx, v); err != nil {
			return 0, fmt.Errorf("creating video %q: %w", v.ID, err)
		}
	}
	for _, u := range m.Quizzes {
		if err := content.CreateQuiz(ctx, u); err != nil {
			return 0, fmt.Errorf("creating quiz %q: %w", u.ID, err)
		}
	}
	for _, u := range m.Assignments {
		if err := content.CreateAssignment(ctx, u); err != nil {
			return 0, fmt.Errorf("creating assignment %q: %w", u.ID, err)
		}
	}
	return len(m.Videos), nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%s: %w", b.String(), domain.ErrValidation)
}
