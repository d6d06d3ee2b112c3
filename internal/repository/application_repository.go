package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobtrackhq/jobtrack-service/internal/domain"
)

// ApplicationFilter captures listing parameters. Unset fields impose no
// constraint.
type ApplicationFilter struct {
	Status   *domain.ApplicationStatus
	Priority *domain.ApplicationPriority
	Search   *string
	Sort     string
	Order    string
}

// OptionalTime distinguishes "field absent from payload" from "clear the
// stored value" on partial updates.
type OptionalTime struct {
	Set  bool
	Time *time.Time
}

// FieldUpdates describes a partial update. Nil pointers leave the stored
// field unchanged.
type FieldUpdates struct {
	Company       *string
	Position      *string
	Status        *domain.ApplicationStatus
	Priority      *domain.ApplicationPriority
	JobURL        *string
	Location      *string
	Type          *domain.JobType
	Salary        *domain.Salary
	Notes         *string
	AppliedDate   OptionalTime
	InterviewDate OptionalTime
	FollowUpDate  OptionalTime
	Contacts      []domain.Contact
}

// StatusCount is one row of the grouped status aggregation.
type StatusCount struct {
	Status domain.ApplicationStatus `json:"status"`
	Count  int64                    `json:"count"`
}

// ApplicationRepository encapsulates application persistence. Every
// statement conjoins the record id with the owning user id, so a caller can
// never reach another user's rows.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, userID, id string) (*domain.Application, error)
	ListWithFilter(ctx context.Context, userID string, filter ApplicationFilter) ([]domain.Application, error)
	UpdateFields(ctx context.Context, userID, id string, updates FieldUpdates) (*domain.Application, error)
	UpdateStatus(ctx context.Context, userID, id string, status domain.ApplicationStatus) (*domain.Application, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
	CountByStatus(ctx context.Context, userID string) ([]StatusCount, error)
	CountAll(ctx context.Context, userID string) (int64, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Application, error)
	ListFollowUps(ctx context.Context, userID string) ([]domain.Application, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

const applicationColumns = `id, user_id, company, position, status, priority, job_url, location, type,
               salary_min, salary_max, salary_currency, notes,
               applied_date, interview_date, follow_up_date, contacts, status_history,
               created_at, updated_at`

// sortColumns whitelists API sort keys against real columns.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"company":      "company",
	"position":     "position",
	"status":       "status",
	"priority":     "priority",
	"appliedDate":  "applied_date",
	"followUpDate": "follow_up_date",
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	contacts, err := json.Marshal(app.Contacts)
	if err != nil {
		return err
	}
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO applications (user_id, company, position, status, priority, job_url, location, type,
                                  salary_min, salary_max, salary_currency, notes,
                                  applied_date, interview_date, follow_up_date, contacts, status_history)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		app.UserID,
		app.Company,
		app.Position,
		app.Status,
		app.Priority,
		app.JobURL,
		app.Location,
		app.Type,
		app.Salary.Min,
		app.Salary.Max,
		app.Salary.Currency,
		app.Notes,
		app.AppliedDate,
		app.InterviewDate,
		app.FollowUpDate,
		contacts,
		history,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
}

func (r *applicationRepository) GetByID(ctx context.Context, userID, id string) (*domain.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id=$1 AND user_id=$2`, applicationColumns)
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *applicationRepository) ListWithFilter(ctx context.Context, userID string, filter ApplicationFilter) ([]domain.Application, error) {
	clauses := []string{"user_id=$1"}
	args := []any{userID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(company) LIKE %s OR LOWER(position) LIKE %s)", placeholder, placeholder))
	}

	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		direction = "ASC"
	}

	// seq is the insertion-order tie-break, keeping single-key sorts stable.
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE %s ORDER BY %s %s, seq ASC`,
		applicationColumns, strings.Join(clauses, " AND "), column, direction)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) UpdateFields(ctx context.Context, userID, id string, updates FieldUpdates) (*domain.Application, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if updates.Company != nil {
		set("company", *updates.Company)
	}
	if updates.Position != nil {
		set("position", *updates.Position)
	}
	if updates.Priority != nil {
		set("priority", *updates.Priority)
	}
	if updates.JobURL != nil {
		set("job_url", *updates.JobURL)
	}
	if updates.Location != nil {
		set("location", *updates.Location)
	}
	if updates.Type != nil {
		set("type", *updates.Type)
	}
	if updates.Salary != nil {
		set("salary_min", updates.Salary.Min)
		set("salary_max", updates.Salary.Max)
		set("salary_currency", updates.Salary.Currency)
	}
	if updates.Notes != nil {
		set("notes", *updates.Notes)
	}
	if updates.AppliedDate.Set {
		set("applied_date", updates.AppliedDate.Time)
	}
	if updates.InterviewDate.Set {
		set("interview_date", updates.InterviewDate.Time)
	}
	if updates.FollowUpDate.Set {
		set("follow_up_date", updates.FollowUpDate.Time)
	}
	if updates.Contacts != nil {
		contacts, err := json.Marshal(updates.Contacts)
		if err != nil {
			return nil, err
		}
		set("contacts", contacts)
	}
	if updates.Status != nil {
		// Status changes always travel with their audit entry, in the same
		// statement, so concurrent writers cannot lose history appends.
		args = append(args, *updates.Status)
		placeholder := len(args)
		sets = append(sets, fmt.Sprintf("status=$%d", placeholder))
		sets = append(sets,
			fmt.Sprintf("status_history = status_history || jsonb_build_object('status', $%d::text, 'changedAt', NOW())", placeholder))
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`UPDATE applications SET %s WHERE id=$%d AND user_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), applicationColumns)

	return r.fetchSingle(ctx, query, args...)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	// Single statement: the field set and the history append are atomic per
	// document, so two concurrent status changes both land in the trail.
	query := fmt.Sprintf(`
        UPDATE applications
        SET status=$1, updated_at=NOW(),
            status_history = status_history || jsonb_build_object('status', $1::text, 'changedAt', NOW())
        WHERE id=$2 AND user_id=$3
        RETURNING %s`, applicationColumns)
	return r.fetchSingle(ctx, query, status, id, userID)
}

func (r *applicationRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	const query = `DELETE FROM applications WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context, userID string) ([]StatusCount, error) {
	const query = `
        SELECT status, COUNT(*) FROM applications
        WHERE user_id=$1 GROUP BY status`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *applicationRepository) CountAll(ctx context.Context, userID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM applications WHERE user_id=$1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *applicationRepository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Application, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE user_id=$1 ORDER BY created_at DESC, seq DESC LIMIT %d`,
		applicationColumns, limit)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) ListFollowUps(ctx context.Context, userID string) ([]domain.Application, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM applications
        WHERE user_id=$1 AND follow_up_date IS NOT NULL AND status NOT IN ($2, $3)
        ORDER BY follow_up_date ASC, seq ASC`, applicationColumns)
	rows, err := r.pool.Query(ctx, query, userID, domain.StatusRejected, domain.StatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Application, error) {
	row := r.pool.QueryRow(ctx, query, args...)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		app      domain.Application
		contacts []byte
		history  []byte
	)
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.Company,
		&app.Position,
		&app.Status,
		&app.Priority,
		&app.JobURL,
		&app.Location,
		&app.Type,
		&app.Salary.Min,
		&app.Salary.Max,
		&app.Salary.Currency,
		&app.Notes,
		&app.AppliedDate,
		&app.InterviewDate,
		&app.FollowUpDate,
		&contacts,
		&history,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contacts, &app.Contacts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
		return nil, err
	}
	return &app, nil
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	var result []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}
