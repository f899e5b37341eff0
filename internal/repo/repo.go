package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"eventreg/internal/audit"
	"eventreg/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	Initialize(ctx context.Context, adminUser, adminPass string) error
	EnsureSchema(ctx context.Context) error
	BootstrapAdmin(ctx context.Context, username, password string) error
	ValidateCredential(ctx context.Context, username, password string) (bool, error)

	InsertRegistration(ctx context.Context, reg *model.Registration) (int64, error)
	RecentRegistrations(ctx context.Context, limit int) ([]model.Registration, error)
	RegistrationsForEvent(ctx context.Context, eventID int64) ([]model.Registration, error)
	RegistrationsForEmail(ctx context.Context, email string) ([]model.Registration, error)
	AllRegistrations(ctx context.Context) ([]model.Registration, error)

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	AllEvents(ctx context.Context) ([]model.Event, error)
	EventByID(ctx context.Context, id int64) (*model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id int64) error
}

type repository struct {
	db    *sqlx.DB
	audit *audit.Writer
	log   *zerolog.Logger
}

func NewRepository(db *sqlx.DB, auditLog *audit.Writer, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, audit: auditLog, log: log}, nil
}

// Initialize runs the startup migration and seeds the default admin
// credential. It must complete before any other operation is reachable.
func (r *repository) Initialize(ctx context.Context, adminUser, adminPass string) error {
	if err := r.EnsureSchema(ctx); err != nil {
		return err
	}
	return r.BootstrapAdmin(ctx, adminUser, adminPass)
}

const registrationColumns = `id, student_name, event_name, tickets,
	COALESCE(email, '') AS email, COALESCE(phone, '') AS phone, created_at, event_id`

// InsertRegistration writes a single registration inside an explicit
// transaction and returns the store-assigned id. The audit log append
// happens only after the commit and only reflects committed data; a
// failed append is reported in the log but never rolls the row back.
func (r *repository) InsertRegistration(ctx context.Context, reg *model.Registration) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO registrations (student_name, event_name, tickets, email, phone, event_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, reg.StudentName, reg.EventName, reg.Tickets, reg.Email, reg.Phone, reg.EventID)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert registration: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to read registration id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit registration: %w", err)
	}

	if r.audit != nil {
		if err := r.audit.Append(reg.StudentName, reg.EventName, reg.Tickets, reg.Email, reg.Phone); err != nil {
			r.log.Error().Err(err).Int64("registration_id", id).
				Msg("registration committed but audit log append failed")
		}
	}

	return id, nil
}

func (r *repository) RecentRegistrations(ctx context.Context, limit int) ([]model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM registrations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, registrationColumns)
	return r.selectRegistrations(ctx, query, limit)
}

func (r *repository) RegistrationsForEvent(ctx context.Context, eventID int64) ([]model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM registrations
		WHERE event_id = ?
		ORDER BY created_at DESC, id DESC
	`, registrationColumns)
	return r.selectRegistrations(ctx, query, eventID)
}

func (r *repository) RegistrationsForEmail(ctx context.Context, email string) ([]model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM registrations
		WHERE email = ?
		ORDER BY created_at DESC, id DESC
	`, registrationColumns)
	return r.selectRegistrations(ctx, query, email)
}

func (r *repository) AllRegistrations(ctx context.Context) ([]model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM registrations
		ORDER BY created_at DESC, id DESC
	`, registrationColumns)
	return r.selectRegistrations(ctx, query)
}

func (r *repository) selectRegistrations(ctx context.Context, query string, args ...any) ([]model.Registration, error) {
	regs := make([]model.Registration, 0)
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select registrations: %w", err)
	}
	return regs, nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO events (title, type, start_datetime, end_datetime, venue,
			description, rules, coordinators, prizes, fee, banner)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Title, e.Type, e.StartDatetime, e.EndDatetime, e.Venue,
		e.Description, e.Rules, e.Coordinators, e.Prizes, e.Fee, e.Banner)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit event: %w", err)
	}

	return id, nil
}

const eventColumns = `id, title, COALESCE(type, '') AS type,
	COALESCE(start_datetime, '') AS start_datetime, COALESCE(end_datetime, '') AS end_datetime,
	COALESCE(venue, '') AS venue, COALESCE(description, '') AS description,
	COALESCE(rules, '') AS rules, COALESCE(coordinators, '') AS coordinators,
	COALESCE(prizes, '') AS prizes, COALESCE(fee, '') AS fee, COALESCE(banner, '') AS banner`

func (r *repository) AllEvents(ctx context.Context) ([]model.Event, error) {
	events := make([]model.Event, 0)
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY start_datetime ASC`, eventColumns)
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	return events, nil
}

func (r *repository) EventByID(ctx context.Context, id int64) (*model.Event, error) {
	var e model.Event
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = ? LIMIT 1`, eventColumns)
	err := r.db.GetContext(ctx, &e, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &e, nil
}

// UpdateEvent replaces the full row keyed by id. Returns
// ErrEventNotFound when no row matched.
func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET title = ?, type = ?, start_datetime = ?, end_datetime = ?,
			venue = ?, description = ?, rules = ?, coordinators = ?, prizes = ?,
			fee = ?, banner = ?
		WHERE id = ?
	`, e.Title, e.Type, e.StartDatetime, e.EndDatetime, e.Venue,
		e.Description, e.Rules, e.Coordinators, e.Prizes, e.Fee, e.Banner, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// DeleteEvent removes an event. Registrations that reference it keep
// their event_id: they are historical records, not live joins.
func (r *repository) DeleteEvent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
