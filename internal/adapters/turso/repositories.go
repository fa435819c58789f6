package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/formab/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Tests       ports.TestRepository
	Variants    ports.VariantRepository
	Assignments ports.AssignmentRepository
	Events      ports.EventRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Tests:       NewTestRepository(db),
		Variants:    NewVariantRepository(db),
		Assignments: NewAssignmentRepository(db),
		Events:      NewEventRepository(db),
	}
}
