package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/reslab/attendance-backend-go/internal/domain/attendance"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

const attendanceColumns = `
	id, member_id, member_name, student_id, rfid_id, date,
	check_in_time, check_out_time, duration, status, source, notes,
	auto_generated, auto_generated_reason, auto_generated_at,
	auto_checked_out, auto_checkout_reason, auto_checked_out_at,
	created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att      attendance.Attendance
		memberID *string
	)
	err := row.Scan(
		&att.ID, &memberID, &att.MemberName, &att.StudentID, &att.RFIDID, &att.Date,
		&att.CheckInTime, &att.CheckOutTime, &att.Duration, &att.Status, &att.Source, &att.Notes,
		&att.AutoGenerated, &att.AutoGeneratedReason, &att.AutoGeneratedAt,
		&att.AutoCheckedOut, &att.AutoCheckoutReason, &att.AutoCheckedOutAt,
		&att.CreatedAt, &att.UpdatedAt,
	)
	if memberID != nil {
		att.MemberID = *memberID
	}
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()
	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return attendances, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, member_id, member_name, student_id, rfid_id, date,
			check_in_time, check_out_time, duration, status, source, notes,
			auto_generated, auto_generated_reason, auto_generated_at,
			auto_checked_out, auto_checkout_reason, auto_checked_out_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		nullIfEmpty(newAttendance.MemberID),
		newAttendance.MemberName,
		newAttendance.StudentID,
		newAttendance.RFIDID,
		newAttendance.Date,
		newAttendance.CheckInTime,
		newAttendance.CheckOutTime,
		newAttendance.Duration,
		newAttendance.Status,
		newAttendance.Source,
		newAttendance.Notes,
		newAttendance.AutoGenerated,
		newAttendance.AutoGeneratedReason,
		newAttendance.AutoGeneratedAt,
		newAttendance.AutoCheckedOut,
		newAttendance.AutoCheckoutReason,
		newAttendance.AutoCheckedOutAt,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return att, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by date: %w", err)
	}
	return collectAttendances(rows)
}

// ListByMemberAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByMemberAndDate(ctx context.Context, memberID string, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE member_id = $1 AND date = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, memberID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance by member and date: %w", err)
	}
	return collectAttendances(rows)
}

// ListOpenByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenByDate(ctx context.Context, date string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1
		  AND COALESCE(check_in_time, '') <> ''
		  AND COALESCE(check_out_time, '') = ''
		ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance: %w", err)
	}
	return collectAttendances(rows)
}

// ExistsForIdentity implements attendance.AttendanceRepository.
func (a *attendanceRepository) ExistsForIdentity(ctx context.Context, date string, id attendance.Identity) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE date = $1
			  AND (
				($2::text <> '' AND member_id = $2::text)
				OR ($3::text <> '' AND student_id = $3::text)
				OR ($4::text <> '' AND UPPER(rfid_id) = UPPER($4::text))
				OR ($5::text <> '' AND LOWER(REGEXP_REPLACE(TRIM(member_name), '\s+', ' ', 'g')) = $5::text)
			  )
		)`

	var exists bool
	err := q.QueryRow(ctx, query,
		date,
		strings.TrimSpace(id.MemberID),
		strings.TrimSpace(id.StudentID),
		strings.TrimSpace(id.RFIDID),
		attendance.NormalizeName(id.Name),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance existence: %w", err)
	}
	return exists, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.MemberID != nil && *filter.MemberID != "" {
		baseWhere += fmt.Sprintf(" AND member_id = $%d", argIdx)
		args = append(args, *filter.MemberID)
		argIdx++
	}

	// Name, student id or card search
	if filter.Search != nil && *filter.Search != "" {
		baseWhere += fmt.Sprintf(" AND (member_name ILIKE $%d OR student_id ILIKE $%d OR rfid_id ILIKE $%d)", argIdx, argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendances WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	// Build ORDER BY
	orderByField := "date"
	switch filter.SortBy {
	case "member_name":
		orderByField = "member_name"
	case "check_in_time":
		orderByField = "check_in_time"
	case "check_out_time":
		orderByField = "check_out_time"
	case "created_at":
		orderByField = "created_at"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY %s %s NULLS LAST, id ASC`, attendanceColumns, baseWhere, orderByField, sortOrder)

	if filter.Limit > 0 {
		page := max(filter.Page, 1)
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	attendances, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// ListRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListRange(ctx context.Context, startDate, endDate string, memberID *string) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date >= $1 AND date <= $2
		  AND ($3::text IS NULL OR $3::text = '' OR member_id = $3::text)
		ORDER BY date ASC, member_name ASC`

	rows, err := q.Query(ctx, query, startDate, endDate, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance range: %w", err)
	}
	return collectAttendances(rows)
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances SET
			check_in_time = $2,
			check_out_time = $3,
			duration = $4,
			status = $5,
			notes = $6,
			auto_generated = $7,
			auto_generated_reason = $8,
			auto_generated_at = $9,
			auto_checked_out = $10,
			auto_checkout_reason = $11,
			auto_checked_out_at = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	cmdTag, err := q.Exec(ctx, query,
		att.ID,
		att.CheckInTime,
		att.CheckOutTime,
		att.Duration,
		att.Status,
		att.Notes,
		att.AutoGenerated,
		att.AutoGeneratedReason,
		att.AutoGeneratedAt,
		att.AutoCheckedOut,
		att.AutoCheckoutReason,
		att.AutoCheckedOutAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	cmdTag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{
		db: db,
	}
}
