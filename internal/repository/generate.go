package repository

import (
	"fmt"
	"os"

	"gorm.io/gen"

	"FlockCheck/internal/model"
	"FlockCheck/storage/database"
)

// Querier interfaces for gorm.io/gen. Running cmd/gen against a live
// database emits type-safe query builders under internal/repository/query
// for reporting jobs that outgrow the hand-written repos.

// AttendanceQuerier covers the attendance reporting queries.
type AttendanceQuerier interface {
	// GetByPublicID looks a record up by its label-facing id.
	//
	// SELECT * FROM @@table WHERE public_id = @publicID LIMIT 1
	GetByPublicID(publicID int64) (*gen.T, error)

	// CountByLocationAndDate yields per-location occupancy for one day.
	//
	// SELECT location_id, COUNT(*) as count
	// FROM @@table
	// WHERE attendance_date = @date::date AND state = 'checked_in'
	// GROUP BY location_id
	CountByLocationAndDate(date string) ([]gen.M, error)

	// ListOverridesByDateRange lists override admissions for review.
	//
	// SELECT * FROM @@table
	// WHERE was_override = true
	//   AND attendance_date >= @fromDate::date
	//   AND attendance_date <= @toDate::date
	// ORDER BY attendance_date DESC, check_in_at DESC
	// LIMIT @limit OFFSET @offset
	ListOverridesByDateRange(fromDate, toDate string, limit, offset int) ([]*gen.T, error)
}

// PagerAssignmentQuerier covers pager usage reporting.
type PagerAssignmentQuerier interface {
	// CountActiveByDate counts pagers still out for a day.
	//
	// SELECT COUNT(*) as count
	// FROM @@table
	// WHERE assignment_date = @date::date AND is_active = true
	CountActiveByDate(date string) (int64, error)

	// ListByDate lists all assignments for a day.
	//
	// SELECT * FROM @@table
	// WHERE assignment_date = @date::date
	// ORDER BY pager_number
	ListByDate(date string) ([]*gen.T, error)
}

// SupervisorSessionQuerier covers session housekeeping.
type SupervisorSessionQuerier interface {
	// ListExpired lists sessions past their expiry that are not revoked.
	//
	// SELECT * FROM @@table
	// WHERE expires_at < NOW() AND revoked = false
	// LIMIT @limit
	ListExpired(limit int) ([]*gen.T, error)
}

func Generate() error {
	if err := database.Init(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	db := database.DB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./internal/repository/query",
		ModelPkgPath:      "FlockCheck/internal/model",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    false,
		FieldSignable:     false,
		FieldWithIndexTag: false,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		&model.Location{},
		&model.AttendanceRecord{},
		&model.PagerAssignment{},
		&model.Supervisor{},
		&model.SupervisorSession{},
	)

	g.ApplyInterface(func(AttendanceQuerier) {}, &model.AttendanceRecord{})
	g.ApplyInterface(func(PagerAssignmentQuerier) {}, &model.PagerAssignment{})
	g.ApplyInterface(func(SupervisorSessionQuerier) {}, &model.SupervisorSession{})

	g.Execute()

	return nil
}

func RunGenerate() {
	if err := Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate code: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Code generation completed successfully!")
}
