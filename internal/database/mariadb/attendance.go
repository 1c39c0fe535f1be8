package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kozaktomas/punchclock/internal/ledger"
)

// CountAttendance returns the number of rows in the legacy attendance table.
func (p *Pool) CountAttendance(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance rows: %w", err)
	}
	return count, nil
}

// ReadAttendance streams legacy attendance rows in (date, name) order and
// calls fn for each converted record. The legacy system predates liveness
// checks, so those fields come back empty.
func (p *Pool) ReadAttendance(ctx context.Context, fn func(ledger.Record) error) error {
	query := `
		SELECT name, DATE_FORMAT(day, '%Y-%m-%d'),
		       TIME_FORMAT(punch_in, '%H:%i:%s'),
		       TIME_FORMAT(punch_out, '%H:%i:%s')
		FROM attendance
		ORDER BY day, name
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query attendance rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, date string
		var punchIn, punchOut sql.NullString
		if err := rows.Scan(&name, &date, &punchIn, &punchOut); err != nil {
			return fmt.Errorf("scan attendance row: %w", err)
		}

		record := ledger.Record{
			Name:     name,
			Date:     date,
			PunchIn:  punchIn.String,
			PunchOut: punchOut.String,
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate attendance rows: %w", err)
	}
	return nil
}
