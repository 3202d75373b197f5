package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/reslab/attendance-backend-go/internal/domain/member"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
)

type memberRepository struct {
	db *database.DB
}

const memberColumns = `id, name, student_id, rfid_id, duty_days, status, email, phone, created_at, updated_at`

func scanMember(row pgx.Row) (member.Member, error) {
	var m member.Member
	err := row.Scan(
		&m.ID, &m.Name, &m.StudentID, &m.RFIDID, &m.DutyDays, &m.Status,
		&m.Email, &m.Phone, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func collectMembers(rows pgx.Rows) ([]member.Member, error) {
	defer rows.Close()
	var members []member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

// memberConflict maps unique index violations to domain errors.
func memberConflict(err error) error {
	switch uniqueViolation(err) {
	case "idx_members_rfid_id":
		return member.ErrRFIDExists
	case "idx_members_student_id":
		return member.ErrStudentIDExists
	}
	return nil
}

func dutyDays(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}

// Create implements member.MemberRepository.
func (r *memberRepository) Create(ctx context.Context, m member.Member) (member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO members (id, name, student_id, rfid_id, duty_days, status, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		m.ID, m.Name, m.StudentID, m.RFIDID, dutyDays(m.DutyDays), m.Status, m.Email, m.Phone,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if conflict := memberConflict(err); conflict != nil {
			return member.Member{}, conflict
		}
		return member.Member{}, fmt.Errorf("failed to create member: %w", err)
	}
	return m, nil
}

func (r *memberRepository) getOne(ctx context.Context, where string, arg any) (member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + memberColumns + ` FROM members WHERE ` + where
	m, err := scanMember(q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return member.Member{}, member.ErrMemberNotFound
		}
		return member.Member{}, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// GetByID implements member.MemberRepository.
func (r *memberRepository) GetByID(ctx context.Context, id string) (member.Member, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByRFID implements member.MemberRepository.
func (r *memberRepository) GetByRFID(ctx context.Context, rfidID string) (member.Member, error) {
	return r.getOne(ctx, "UPPER(rfid_id) = UPPER($1)", rfidID)
}

// GetByStudentID implements member.MemberRepository.
func (r *memberRepository) GetByStudentID(ctx context.Context, studentID string) (member.Member, error) {
	return r.getOne(ctx, "student_id = $1", studentID)
}

// List implements member.MemberRepository.
func (r *memberRepository) List(ctx context.Context, filter member.MemberFilter) ([]member.Member, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		baseWhere += fmt.Sprintf(" AND (name ILIKE $%d OR student_id ILIKE $%d OR rfid_id ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.DutyDay != nil && *filter.DutyDay != "" {
		baseWhere += fmt.Sprintf(" AND $%d = ANY(duty_days)", argIdx)
		args = append(args, *filter.DutyDay)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT %s FROM members WHERE %s ORDER BY name ASC, id ASC`, memberColumns, baseWhere)
	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query members: %w", err)
	}
	members, err := collectMembers(rows)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// ListActiveByDutyDay implements member.MemberRepository.
func (r *memberRepository) ListActiveByDutyDay(ctx context.Context, weekday string) ([]member.Member, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + memberColumns + `
		FROM members
		WHERE status = $1 AND $2 = ANY(duty_days)
		ORDER BY name ASC, id ASC`

	rows, err := q.Query(ctx, query, member.StatusActive, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled members: %w", err)
	}
	return collectMembers(rows)
}

// CountActive implements member.MemberRepository.
func (r *memberRepository) CountActive(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM members WHERE status = $1`, member.StatusActive).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}
	return total, nil
}

// Update implements member.MemberRepository.
func (r *memberRepository) Update(ctx context.Context, m member.Member) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE members SET
			name = $2, student_id = $3, rfid_id = $4, duty_days = $5,
			status = $6, email = $7, phone = $8, updated_at = NOW()
		WHERE id = $1
	`

	cmdTag, err := q.Exec(ctx, query,
		m.ID, m.Name, m.StudentID, m.RFIDID, dutyDays(m.DutyDays), m.Status, m.Email, m.Phone,
	)
	if err != nil {
		if conflict := memberConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update member: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

// SetStatus implements member.MemberRepository.
func (r *memberRepository) SetStatus(ctx context.Context, id string, status member.Status) error {
	q := GetQuerier(ctx, r.db)

	cmdTag, err := q.Exec(ctx, `UPDATE members SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set member status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return member.ErrMemberNotFound
	}
	return nil
}

func NewMemberRepository(db *database.DB) member.MemberRepository {
	return &memberRepository{
		db: db,
	}
}
