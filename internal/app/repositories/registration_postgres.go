package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/hackfest/internal/app/models"
	"github.com/yigit/hackfest/internal/db"
	"github.com/yigit/hackfest/internal/pkg/apperrors"
	"github.com/yigit/hackfest/internal/pkg/dberrors"
	"github.com/yigit/hackfest/internal/pkg/logger"
)

const leaderEmailIndex = "registrations_leader_email_idx"

var registrationColumns = []string{
	"id::text", "leader_name", "leader_email", "leader_phone", "leader_department",
	"leader_reg_number", "leader_semester", "college_name", "college_address",
	"project_title", "project_description", "terms_accepted", "created_at",
}

// PostgresRegistrationStore stores registrations in the registrations and
// team_members tables.
type PostgresRegistrationStore struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresRegistrationStore creates a new PostgresRegistrationStore
func NewPostgresRegistrationStore(database *db.PostgresDB) *PostgresRegistrationStore {
	return &PostgresRegistrationStore{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the registration and its three members in one transaction.
func (r *PostgresRegistrationStore) Create(ctx context.Context, rec *models.RegistrationRecord) (bool, error) {
	if _, err := uuid.Parse(rec.ID); err != nil {
		return false, fmt.Errorf("%w: registration id must be a UUID", apperrors.ErrBadRequest)
	}

	reg := rec.Registration
	inserted := false

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("registrations").
			Columns("id", "leader_name", "leader_email", "leader_phone", "leader_department",
				"leader_reg_number", "leader_semester", "college_name", "college_address",
				"project_title", "project_description", "terms_accepted", "created_at").
			Values(rec.ID, reg.LeaderName, reg.LeaderEmail, reg.LeaderPhone, reg.LeaderDepartment,
				reg.LeaderRegNumber, reg.LeaderSemester, reg.CollegeName, reg.CollegeAddress,
				reg.ProjectTitle, reg.ProjectDescription, reg.TermsAccepted, rec.CreatedAt).
			Suffix("ON CONFLICT (id) DO NOTHING RETURNING id::text").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create registration query: %w", err)
		}

		var id string
		if err := tx.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Same key stored by an earlier call.
				return nil
			}
			if dberrors.IsDuplicateConstraintError(err, leaderEmailIndex) {
				return apperrors.ErrRegistrationAlreadyExists
			}
			return fmt.Errorf("error creating registration: %w", err)
		}

		members := r.sb.Insert("team_members").
			Columns("registration_id", "position", "name", "department", "reg_number", "semester", "email")
		for i, m := range reg.Members() {
			members = members.Values(rec.ID, i+1, m.Name, m.Department, m.RegNumber, m.Semester, m.Email)
		}
		sql, args, err = members.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create team members query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error creating team members: %w", err)
		}

		inserted = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrRegistrationAlreadyExists) {
			logger.Error().Err(err).Str("registrationID", rec.ID).Msg("Error storing registration")
		}
		return false, err
	}

	return inserted, nil
}

// GetByID retrieves a registration with its members
func (r *PostgresRegistrationStore) GetByID(ctx context.Context, id string) (*models.RegistrationRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrRegistrationNotFound
	}

	sql, args, err := r.sb.Select(registrationColumns...).
		From("registrations").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get registration query: %w", err)
	}

	rec, err := scanRegistration(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRegistrationNotFound
		}
		logger.Error().Err(err).Str("registrationID", id).Msg("Error scanning registration row")
		return nil, fmt.Errorf("error getting registration by ID: %w", err)
	}

	if err := r.loadMembers(ctx, []*models.RegistrationRecord{rec}); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns a page of registrations, newest first
func (r *PostgresRegistrationStore) List(ctx context.Context, offset uint64, limit int) ([]*models.RegistrationRecord, error) {
	sql, args, err := r.sb.Select(registrationColumns...).
		From("registrations").
		OrderBy("created_at DESC", "id ASC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list registrations query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list registrations query")
		return nil, fmt.Errorf("error querying registrations: %w", err)
	}
	defer rows.Close()

	records := []*models.RegistrationRecord{}
	for rows.Next() {
		rec, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning registration row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}

	if err := r.loadMembers(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored registrations
func (r *PostgresRegistrationStore) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("registrations").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count registrations query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting registrations: %w", err)
	}
	return total, nil
}

func (r *PostgresRegistrationStore) loadMembers(ctx context.Context, records []*models.RegistrationRecord) error {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]*models.RegistrationRecord, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
		ids = append(ids, rec.ID)
	}

	sql, args, err := r.sb.Select("registration_id::text", "position", "name", "department", "reg_number", "semester", "email").
		From("team_members").
		Where(squirrel.Eq{"registration_id": ids}).
		OrderBy("registration_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build team members query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			registrationID string
			position       int16
			m              models.TeamMember
		)
		if err := rows.Scan(&registrationID, &position, &m.Name, &m.Department, &m.RegNumber, &m.Semester, &m.Email); err != nil {
			return fmt.Errorf("error scanning team member row: %w", err)
		}

		rec, ok := byID[registrationID]
		if !ok {
			continue
		}
		switch position {
		case 1:
			rec.Registration.Member1 = m
		case 2:
			rec.Registration.Member2 = m
		case 3:
			rec.Registration.Member3 = m
		}
	}
	return rows.Err()
}

func scanRegistration(row pgx.Row) (*models.RegistrationRecord, error) {
	rec := &models.RegistrationRecord{}
	reg := &rec.Registration
	err := row.Scan(&rec.ID, &reg.LeaderName, &reg.LeaderEmail, &reg.LeaderPhone, &reg.LeaderDepartment,
		&reg.LeaderRegNumber, &reg.LeaderSemester, &reg.CollegeName, &reg.CollegeAddress,
		&reg.ProjectTitle, &reg.ProjectDescription, &reg.TermsAccepted, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
