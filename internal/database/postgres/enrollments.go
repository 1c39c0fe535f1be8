package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/punchclock/internal/enroll"
	"github.com/kozaktomas/punchclock/internal/identity"
)

// EnrollmentRepository stores reference embeddings in PostgreSQL with
// pgvector. It satisfies enroll.Store so it can replace the directory store.
type EnrollmentRepository struct {
	pool *Pool
}

// NewEnrollmentRepository creates a repository over an open pool.
func NewEnrollmentRepository(pool *Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// SimilarResult is one hit from a similarity query.
type SimilarResult struct {
	Name     string
	Distance float64 // cosine distance
}

// List returns every enrolled identity ordered by name.
func (r *EnrollmentRepository) List(ctx context.Context) ([]identity.Enrolled, error) {
	rows, err := r.pool.Query(ctx, "SELECT name, embedding FROM enrollments ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	var enrolled []identity.Enrolled
	for rows.Next() {
		var name string
		var vec pgvector.Vector
		if err := rows.Scan(&name, &vec); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enrolled = append(enrolled, identity.Enrolled{Name: name, Embedding: vec.Slice()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrollments: %w", err)
	}
	return enrolled, nil
}

// Save upserts the reference embedding for a name.
func (r *EnrollmentRepository) Save(ctx context.Context, name string, embedding []float32) error {
	if name == "" {
		return fmt.Errorf("identity name is required")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding for %s is empty", name)
	}

	query := `
		INSERT INTO enrollments (name, embedding)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET embedding = EXCLUDED.embedding
	`
	if _, err := r.pool.Exec(ctx, query, name, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("save enrollment for %s: %w", name, err)
	}
	return nil
}

// Delete removes the identity whose normalized name matches the argument.
func (r *EnrollmentRepository) Delete(ctx context.Context, name string) error {
	rows, err := r.pool.Query(ctx, "SELECT name FROM enrollments")
	if err != nil {
		return fmt.Errorf("query enrollments: %w", err)
	}
	defer rows.Close()

	want := enroll.NormalizeName(name)
	stored := ""
	for rows.Next() {
		var candidate string
		if err := rows.Scan(&candidate); err != nil {
			return fmt.Errorf("scan enrollment name: %w", err)
		}
		if enroll.NormalizeName(candidate) == want {
			stored = candidate
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate enrollment names: %w", err)
	}
	if stored == "" {
		return fmt.Errorf("user %q not found", name)
	}

	if _, err := r.pool.Exec(ctx, "DELETE FROM enrollments WHERE name = $1", stored); err != nil {
		return fmt.Errorf("delete user %s: %w", stored, err)
	}
	return nil
}

// FindSimilar returns up to k enrolled identities closest to the query
// embedding by cosine distance, nearest first.
func (r *EnrollmentRepository) FindSimilar(ctx context.Context, query []float32, k int) ([]SimilarResult, error) {
	stmt := `
		SELECT name, embedding <=> $1 AS distance
		FROM enrollments
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, stmt, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	var results []SimilarResult
	for rows.Next() {
		var res SimilarResult
		if err := rows.Scan(&res.Name, &res.Distance); err != nil {
			return nil, fmt.Errorf("scan similarity result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity results: %w", err)
	}
	return results, nil
}

// Count returns the number of enrolled identities.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM enrollments").Scan(&count); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
