// ABOUTME: Person database operations
// ABOUTME: Handles CRUD, partial updates and lookups for prospect records
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/leadbook/models"
)

// ErrPersonNotFound is returned when no row matches the given id.
var ErrPersonNotFound = errors.New("person not found")

const personColumns = `id, name, url, profile_image, location, headline, about, current_position,
	current_company, email, phone, websites, connected, connection_degree, status, engagement,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*models.Person, error) {
	var (
		p                                                           models.Person
		name, url, image, location, headline, about, position, comp sql.NullString
		email, phone                                                sql.NullString
		websites                                                    string
		status                                                      string
	)

	err := row.Scan(&p.ID, &name, &url, &image, &location, &headline, &about, &position,
		&comp, &email, &phone, &websites, &p.Connected, &p.ConnectionDegree, &status, &p.Engagement,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Name = nullToPtr(name)
	p.URL = nullToPtr(url)
	p.ProfileImage = nullToPtr(image)
	p.Location = nullToPtr(location)
	p.Headline = nullToPtr(headline)
	p.About = nullToPtr(about)
	p.CurrentPosition = nullToPtr(position)
	p.CurrentCompany = nullToPtr(comp)
	p.Email = nullToPtr(email)
	p.Phone = nullToPtr(phone)
	p.Status = models.ContactStatus(status)

	p.Websites = []string{}
	if websites != "" {
		if err := json.Unmarshal([]byte(websites), &p.Websites); err != nil {
			return nil, fmt.Errorf("failed to decode websites for %s: %w", p.ID, err)
		}
	}

	return &p, nil
}

// ListPeople returns people newest first. A limit <= 0 returns everyone.
func ListPeople(ctx context.Context, db *sql.DB, limit int) ([]models.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer func() { _ = rows.Close() }()

	people := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, *p)
	}

	return people, rows.Err()
}

// GetPerson returns ErrPersonNotFound when the id is unknown.
func GetPerson(ctx context.Context, db *sql.DB, id string) (*models.Person, error) {
	row := db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}

// FindPersonByEmail does a case-insensitive lookup; nil when absent.
func FindPersonByEmail(ctx context.Context, db *sql.DB, email string) (*models.Person, error) {
	row := db.QueryRowContext(ctx, `SELECT `+personColumns+` FROM people WHERE LOWER(email) = LOWER(?) LIMIT 1`, email)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person by email: %w", err)
	}
	return p, nil
}

// InsertPerson stores a new record built from patch. The patch is expected
// to be normalized already; missing status defaults to the first stage.
func InsertPerson(ctx context.Context, db *sql.DB, patch models.PersonPatch) (*models.Person, error) {
	now := time.Now().UTC()
	p := models.Person{
		ID:        uuid.New().String(),
		Status:    models.StatusNotStarted,
		Websites:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	p = p.Apply(patch)
	dropEmptyText(&p)

	websites, err := json.Marshal(p.Websites)
	if err != nil {
		return nil, fmt.Errorf("failed to encode websites: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO people (`+personColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.URL, p.ProfileImage, p.Location, p.Headline, p.About, p.CurrentPosition,
		p.CurrentCompany, p.Email, p.Phone, string(websites), p.Connected, p.ConnectionDegree,
		string(p.Status), p.Engagement, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert person: %w", err)
	}

	return &p, nil
}

// UpdatePerson writes only the fields present in patch and returns the
// stored row. An empty string clears an optional text field.
func UpdatePerson(ctx context.Context, db *sql.DB, id string, patch models.PersonPatch) (*models.Person, error) {
	var sets []string
	var args []any

	text := func(column string, v *string) {
		if v == nil {
			return
		}
		sets = append(sets, column+" = ?")
		if *v == "" {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
	}

	text("name", patch.Name)
	text("url", patch.URL)
	text("profile_image", patch.ProfileImage)
	text("location", patch.Location)
	text("headline", patch.Headline)
	text("about", patch.About)
	text("current_position", patch.CurrentPosition)
	text("current_company", patch.CurrentCompany)
	text("email", patch.Email)
	text("phone", patch.Phone)

	if patch.Websites != nil {
		websites := *patch.Websites
		if websites == nil {
			websites = []string{}
		}
		encoded, err := json.Marshal(websites)
		if err != nil {
			return nil, fmt.Errorf("failed to encode websites: %w", err)
		}
		sets = append(sets, "websites = ?")
		args = append(args, string(encoded))
	}
	if patch.Connected != nil {
		sets = append(sets, "connected = ?")
		args = append(args, *patch.Connected)
	}
	if d, ok := patch.ConnectionDegree.Get(); ok {
		sets = append(sets, "connection_degree = ?")
		args = append(args, d)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.Engagement != nil {
		sets = append(sets, "engagement = ?")
		args = append(args, *patch.Engagement)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	result, err := db.ExecContext(ctx, `UPDATE people SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, ErrPersonNotFound
	}

	return GetPerson(ctx, db, id)
}

// DeletePerson removes the row and returns ErrPersonNotFound if nothing matched.
func DeletePerson(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sync_log WHERE person_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete import log: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete person: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrPersonNotFound
	}

	return tx.Commit()
}

// CountByStatus returns how many people sit in each pipeline stage.
func CountByStatus(ctx context.Context, db *sql.DB) (map[models.ContactStatus]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM people GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count people by status: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[models.ContactStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.ContactStatus(status)] = n
	}
	return counts, rows.Err()
}

// dropEmptyText stores an empty optional string as NULL, matching UpdatePerson.
func dropEmptyText(p *models.Person) {
	for _, f := range []**string{
		&p.Name, &p.URL, &p.ProfileImage, &p.Location, &p.Headline, &p.About,
		&p.CurrentPosition, &p.CurrentCompany, &p.Email, &p.Phone,
	} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
}

func nullToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
