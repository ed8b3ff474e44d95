package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sinaulab/sinau/internal/db"
	"github.com/sinaulab/sinau/internal/domain"
)

// SQLContentRepo implements ContentRepo over the module and unit tables.
type SQLContentRepo struct {
	db db.DBTX
}

func NewSQLContentRepo(conn db.DBTX) *SQLContentRepo {
	return &SQLContentRepo{db: conn}
}

const (
	moduleColumns      = `id, title, description, order_index, created_at, updated_at`
	materialColumns    = `id, module_id, title, content, point_reward, order_index, created_at`
	enrichmentColumns  = `id, module_id, title, url, point_reward, order_index, created_at`
	videoColumns       = `id, enrichment_id, title, url, order_index`
	cpmkColumns        = `id, module_id, code, outcomes, point_reward, order_index, created_at`
	objectiveColumns   = `id, module_id, description, point_reward, order_index, created_at`
	quizColumns        = `id, module_id, title, point_reward, order_index, created_at`
	assignmentColumns  = `id, module_id, title, description, deadline, point_reward_early, point_reward_ontime, point_reward_late, order_index, created_at`
	unitOrderingClause = ` ORDER BY order_index, id`
)

// --- create ---

func (r *SQLContentRepo) CreateModule(ctx context.Context, m *domain.Module) error {
	return r.insert(ctx, "module", m.ID,
		`INSERT INTO modules (`+moduleColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Description, m.OrderIndex, formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
}

func (r *SQLContentRepo) CreateMaterial(ctx context.Context, m *domain.Material) error {
	return r.insert(ctx, "material", m.ID,
		`INSERT INTO materials (`+materialColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ModuleID, m.Title, m.Content, m.PointReward, m.OrderIndex, formatTime(m.CreatedAt))
}

func (r *SQLContentRepo) CreateEnrichment(ctx context.Context, e *domain.Enrichment) error {
	return r.insert(ctx, "enrichment", e.ID,
		`INSERT INTO enrichments (`+enrichmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ModuleID, e.Title, e.URL, e.PointReward, e.OrderIndex, formatTime(e.CreatedAt))
}

func (r *SQLContentRepo) CreateEnrichmentVideo(ctx context.Context, v *domain.EnrichmentVideo) error {
	return r.insert(ctx, "enrichment video", v.ID,
		`INSERT INTO enrichment_videos (`+videoColumns+`) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.EnrichmentID, v.Title, v.URL, v.OrderIndex)
}

func (r *SQLContentRepo) CreateCpmk(ctx context.Context, c *domain.Cpmk) error {
	outcomes := c.Outcomes
	if outcomes == nil {
		outcomes = []string{}
	}
	encoded, err := json.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("encoding cpmk outcomes: %w", err)
	}
	return r.insert(ctx, "cpmk", c.ID,
		`INSERT INTO cpmks (`+cpmkColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ModuleID, c.Code, string(encoded), c.PointReward, c.OrderIndex, formatTime(c.CreatedAt))
}

func (r *SQLContentRepo) CreateLearningObjective(ctx context.Context, o *domain.LearningObjective) error {
	return r.insert(ctx, "learning objective", o.ID,
		`INSERT INTO learning_objectives (`+objectiveColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.ModuleID, o.Description, o.PointReward, o.OrderIndex, formatTime(o.CreatedAt))
}

func (r *SQLContentRepo) CreateQuiz(ctx context.Context, q *domain.Quiz) error {
	return r.insert(ctx, "quiz", q.ID,
		`INSERT INTO quizzes (`+quizColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID, q.ModuleID, q.Title, q.PointReward, q.OrderIndex, formatTime(q.CreatedAt))
}

func (r *SQLContentRepo) CreateAssignment(ctx context.Context, a *domain.Assignment) error {
	return r.insert(ctx, "assignment", a.ID,
		`INSERT INTO assignments (`+assignmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ModuleID, a.Title, a.Description, formatTime(a.Deadline),
		a.PointRewardEarly, a.PointRewardOntime, a.PointRewardLate,
		a.OrderIndex, formatTime(a.CreatedAt))
}

func (r *SQLContentRepo) insert(ctx context.Context, what, id, query string, args ...any) error {
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%s %s: %w", what, id, domain.ErrDuplicate)
		}
		return fmt.Errorf("inserting %s: %w", what, err)
	}
	return nil
}

// --- single lookups ---

func (r *SQLContentRepo) GetModule(ctx context.Context, id string) (*domain.Module, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = ?`, id)
	return getOne(row, "module", id, scanModule)
}

func (r *SQLContentRepo) ListModules(ctx context.Context) ([]*domain.Module, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+moduleColumns+` FROM modules`+unitOrderingClause)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	return collectRows(rows, "modules", scanModule)
}

func (r *SQLContentRepo) GetMaterial(ctx context.Context, id string) (*domain.Material, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = ?`, id)
	return getOne(row, "material", id, scanMaterial)
}

func (r *SQLContentRepo) GetEnrichment(ctx context.Context, id string) (*domain.Enrichment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+enrichmentColumns+` FROM enrichments WHERE id = ?`, id)
	return getOne(row, "enrichment", id, scanEnrichment)
}

func (r *SQLContentRepo) GetCpmk(ctx context.Context, id string) (*domain.Cpmk, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cpmkColumns+` FROM cpmks WHERE id = ?`, id)
	return getOne(row, "cpmk", id, scanCpmk)
}

func (r *SQLContentRepo) GetLearningObjective(ctx context.Context, id string) (*domain.LearningObjective, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+objectiveColumns+` FROM learning_objectives WHERE id = ?`, id)
	return getOne(row, "learning objective", id, scanLearningObjective)
}

func (r *SQLContentRepo) GetQuiz(ctx context.Context, id string) (*domain.Quiz, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = ?`, id)
	return getOne(row, "quiz", id, scanQuiz)
}

func (r *SQLContentRepo) GetAssignment(ctx context.Context, id string) (*domain.Assignment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	return getOne(row, "assignment", id, scanAssignment)
}

func (r *SQLContentRepo) ListEnrichmentVideos(ctx context.Context, enrichmentID string) ([]*domain.EnrichmentVideo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM enrichment_videos WHERE enrichment_id = ?`+unitOrderingClause, enrichmentID)
	if err != nil {
		return nil, fmt.Errorf("listing enrichment videos: %w", err)
	}
	return collectRows(rows, "enrichment videos", scanVideo)
}

// --- module aggregates ---

func (r *SQLContentRepo) GetModuleContent(ctx context.Context, moduleID string) (*domain.ModuleContent, error) {
	m, err := r.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	c := &domain.ModuleContent{Module: m}

	if c.Materials, err = listByModule(ctx, r.db, "materials", materialColumns, moduleID, scanMaterial); err != nil {
		return nil, err
	}
	if c.Enrichments, err = listByModule(ctx, r.db, "enrichments", enrichmentColumns, moduleID, scanEnrichment); err != nil {
		return nil, err
	}
	if c.Cpmks, err = listByModule(ctx, r.db, "cpmks", cpmkColumns, moduleID, scanCpmk); err != nil {
		return nil, err
	}
	if c.LearningObjectives, err = listByModule(ctx, r.db, "learning_objectives", objectiveColumns, moduleID, scanLearningObjective); err != nil {
		return nil, err
	}
	if c.Quizzes, err = listByModule(ctx, r.db, "quizzes", quizColumns, moduleID, scanQuiz); err != nil {
		return nil, err
	}
	if c.Assignments, err = listByModule(ctx, r.db, "assignments", assignmentColumns, moduleID, scanAssignment); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.enrichment_id, v.title, v.url, v.order_index
		FROM enrichment_videos v JOIN enrichments e ON e.id = v.enrichment_id
		WHERE e.module_id = ? ORDER BY e.order_index, e.id, v.order_index, v.id`, moduleID)
	if err != nil {
		return nil, fmt.Errorf("listing module videos: %w", err)
	}
	if c.Videos, err = collectRows(rows, "module videos", scanVideo); err != nil {
		return nil, err
	}
	return c, nil
}

// unitTables maps each kind to the table holding its units.
var unitTables = map[domain.UnitKind]string{
	domain.KindMaterial:          "materials",
	domain.KindEnrichment:        "enrichments",
	domain.KindCpmk:              "cpmks",
	domain.KindLearningObjective: "learning_objectives",
	domain.KindQuiz:              "quizzes",
	domain.KindAssignment:        "assignments",
}

func (r *SQLContentRepo) CountUnitsByKind(ctx context.Context, moduleID string) (map[domain.UnitKind]int, error) {
	counts := make(map[domain.UnitKind]int, len(domain.AllUnitKinds))
	for _, kind := range domain.AllUnitKinds {
		var n int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE module_id = ?`, unitTables[kind])
		if err := r.db.QueryRowContext(ctx, query, moduleID).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", unitTables[kind], err)
		}
		counts[kind] = n
	}
	return counts, nil
}

func getOne[T any](row *sql.Row, what, id string, scan func(rowScanner) (T, error)) (T, error) {
	v, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return v, err
}

func listByModule[T any](ctx context.Context, conn db.DBTX, table, columns, moduleID string, scan func(rowScanner) (T, error)) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE module_id = ?`+unitOrderingClause, columns, table)
	rows, err := conn.QueryContext(ctx, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return collectRows(rows, table, scan)
}

// --- scanners ---

// scanErr passes sql.ErrNoRows through untouched so getOne can map it.
func scanErr(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return fmt.Errorf("scanning %s: %w", what, err)
}

func scanModule(s rowScanner) (*domain.Module, error) {
	var m domain.Module
	var createdAt, updatedAt string
	if err := s.Scan(&m.ID, &m.Title, &m.Description, &m.OrderIndex, &createdAt, &updatedAt); err != nil {
		return nil, scanErr("module", err)
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &m, nil
}

func scanMaterial(s rowScanner) (*domain.Material, error) {
	var m domain.Material
	var createdAt string
	if err := s.Scan(&m.ID, &m.ModuleID, &m.Title, &m.Content, &m.PointReward, &m.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("material", err)
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}

func scanEnrichment(s rowScanner) (*domain.Enrichment, error) {
	var e domain.Enrichment
	var createdAt string
	if err := s.Scan(&e.ID, &e.ModuleID, &e.Title, &e.URL, &e.PointReward, &e.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("enrichment", err)
	}
	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &e, nil
}

func scanVideo(s rowScanner) (*domain.EnrichmentVideo, error) {
	var v domain.EnrichmentVideo
	if err := s.Scan(&v.ID, &v.EnrichmentID, &v.Title, &v.URL, &v.OrderIndex); err != nil {
		return nil, scanErr("enrichment video", err)
	}
	return &v, nil
}

func scanCpmk(s rowScanner) (*domain.Cpmk, error) {
	var c domain.Cpmk
	var outcomes, createdAt string
	if err := s.Scan(&c.ID, &c.ModuleID, &c.Code, &outcomes, &c.PointReward, &c.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("cpmk", err)
	}
	if err := json.Unmarshal([]byte(outcomes), &c.Outcomes); err != nil {
		return nil, fmt.Errorf("decoding cpmk outcomes: %w", err)
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}

func scanLearningObjective(s rowScanner) (*domain.LearningObjective, error) {
	var o domain.LearningObjective
	var createdAt string
	if err := s.Scan(&o.ID, &o.ModuleID, &o.Description, &o.PointReward, &o.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("learning objective", err)
	}
	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &o, nil
}

func scanQuiz(s rowScanner) (*domain.Quiz, error) {
	var q domain.Quiz
	var createdAt string
	if err := s.Scan(&q.ID, &q.ModuleID, &q.Title, &q.PointReward, &q.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("quiz", err)
	}
	var err error
	if q.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &q, nil
}

func scanAssignment(s rowScanner) (*domain.Assignment, error) {
	var a domain.Assignment
	var deadline, createdAt string
	if err := s.Scan(&a.ID, &a.ModuleID, &a.Title, &a.Description, &deadline,
		&a.PointRewardEarly, &a.PointRewardOntime, &a.PointRewardLate,
		&a.OrderIndex, &createdAt); err != nil {
		return nil, scanErr("assignment", err)
	}
	var err error
	if a.Deadline, err = parseTime(deadline); err != nil {
		return nil, fmt.Errorf("parsing deadline: %w", err)
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}
