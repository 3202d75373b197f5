package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reslab/attendance-backend-go/internal/domain/scan"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
	"github.com/reslab/attendance-backend-go/internal/pkg/database"
)

type scanLogRepository struct {
	db *database.DB
}

const scanLogColumns = `id, rfid_id, device_id, scanned_at, member_id, member_name, attendance_id, classification, message, created_at`

func collectScanLogs(rows pgx.Rows) ([]scan.Log, error) {
	defer rows.Close()
	var logs []scan.Log
	for rows.Next() {
		var l scan.Log
		if err := rows.Scan(
			&l.ID, &l.RFIDID, &l.DeviceID, &l.ScannedAt, &l.MemberID, &l.MemberName,
			&l.AttendanceID, &l.Classification, &l.Message, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scan log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan log rows: %w", err)
	}
	return logs, nil
}

// Create implements scan.LogRepository.
func (r *scanLogRepository) Create(ctx context.Context, l scan.Log) (scan.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO scan_logs (id, rfid_id, device_id, scanned_at, member_id, member_name, attendance_id, classification, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	err := q.QueryRow(ctx, query,
		l.ID, l.RFIDID, l.DeviceID, l.ScannedAt, l.MemberID, l.MemberName, l.AttendanceID, l.Classification, l.Message,
	).Scan(&l.CreatedAt)
	if err != nil {
		return scan.Log{}, fmt.Errorf("failed to create scan log: %w", err)
	}
	return l, nil
}

// List implements scan.LogRepository. The date filter is a calendar day in loc.
func (r *scanLogRepository) List(ctx context.Context, filter scan.ScanLogFilter, loc *time.Location) ([]scan.Log, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1 = 1"
	args := []interface{}{}
	argIdx := 1

	if filter.DeviceID != nil && *filter.DeviceID != "" {
		baseWhere += fmt.Sprintf(" AND device_id = $%d", argIdx)
		args = append(args, *filter.DeviceID)
		argIdx++
	}
	if filter.RFIDID != nil && *filter.RFIDID != "" {
		baseWhere += fmt.Sprintf(" AND UPPER(rfid_id) = UPPER($%d)", argIdx)
		args = append(args, *filter.RFIDID)
		argIdx++
	}
	if filter.MemberID != nil && *filter.MemberID != "" {
		baseWhere += fmt.Sprintf(" AND member_id = $%d", argIdx)
		args = append(args, *filter.MemberID)
		argIdx++
	}
	if filter.Classification != nil && *filter.Classification != "" {
		baseWhere += fmt.Sprintf(" AND classification = $%d", argIdx)
		args = append(args, *filter.Classification)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		start, err := clock.On(*filter.Date, clock.TimeOfDay{}, loc)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid date filter: %w", err)
		}
		baseWhere += fmt.Sprintf(" AND scanned_at >= $%d AND scanned_at < $%d", argIdx, argIdx+1)
		args = append(args, start, start.AddDate(0, 0, 1))
		argIdx += 2
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM scan_logs WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count scan logs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := max(filter.Page, 1)
	selectQuery := fmt.Sprintf(`SELECT %s FROM scan_logs WHERE %s ORDER BY scanned_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		scanLogColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query scan logs: %w", err)
	}
	logs, err := collectScanLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// Recent implements scan.LogRepository.
func (r *scanLogRepository) Recent(ctx context.Context, limit int) ([]scan.Log, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+scanLogColumns+` FROM scan_logs ORDER BY scanned_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scan logs: %w", err)
	}
	return collectScanLogs(rows)
}

func NewScanLogRepository(db *database.DB) scan.LogRepository {
	return &scanLogRepository{
		db: db,
	}
}
