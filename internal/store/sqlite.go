package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/northwind-msp/portal-api/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It backs local
// development and tests; production uses Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS wizard_sessions (
	id         TEXT PRIMARY KEY,
	step       INTEGER NOT NULL DEFAULT 0,
	submitting INTEGER NOT NULL DEFAULT 0,
	answers    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id                   TEXT PRIMARY KEY,
	first_name           TEXT NOT NULL,
	last_name            TEXT NOT NULL,
	email                TEXT NOT NULL,
	phone                TEXT NOT NULL DEFAULT '',
	company              TEXT NOT NULL DEFAULT '',
	subject              TEXT NOT NULL DEFAULT '',
	message              TEXT NOT NULL DEFAULT '',
	form_type            TEXT NOT NULL,
	request_consultation INTEGER NOT NULL DEFAULT 0,
	subscribe_newsletter INTEGER NOT NULL DEFAULT 0,
	preferred_date       TEXT,
	employee_count       TEXT,
	industry             TEXT,
	ticket_key           TEXT NOT NULL DEFAULT '',
	crm_id               TEXT NOT NULL DEFAULT '',
	crm_synced_at        DATETIME,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS clients (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	contact_email       TEXT NOT NULL UNIQUE,
	contact_name        TEXT NOT NULL DEFAULT '',
	billing_customer_id TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS services (
	id           TEXT PRIMARY KEY,
	client_email TEXT NOT NULL,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'active',
	renews_at    DATETIME,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS impersonations (
	admin_id   TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	started_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_form_type ON leads(form_type);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);
CREATE INDEX IF NOT EXISTS idx_services_client_email ON services(client_email);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateWizardSession(ctx context.Context) (*model.WizardSession, error) {
	sess := &model.WizardSession{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal answers")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wizard_sessions (id, step, submitting, answers, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Step, sess.Submitting, string(answersJSON), sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert wizard session")
	}
	return sess, nil
}

func (s *SQLiteStore) GetWizardSession(ctx context.Context, id string) (*model.WizardSession, error) {
	var sess model.WizardSession
	var answersJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, step, submitting, answers, created_at, updated_at FROM wizard_sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Step, &sess.Submitting, &answersJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: wizard session %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get wizard session %s", id)
	}
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal answers")
	}
	return &sess, nil
}

func (s *SQLiteStore) SaveWizardSession(ctx context.Context, sess *model.WizardSession) error {
	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal answers")
	}

	sess.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE wizard_sessions SET step = ?, submitting = ?, answers = ?, updated_at = ? WHERE id = ?`,
		sess.Step, sess.Submitting, string(answersJSON), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save wizard session %s", sess.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: wizard session %s", sess.ID)
	}
	return nil
}

func (s *SQLiteStore) BeginSubmit(ctx context.Context, id string) (*model.WizardSession, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE wizard_sessions SET submitting = 1, updated_at = ? WHERE id = ? AND submitting = 0`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: begin submit %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetWizardSession(ctx, id); err != nil {
			return nil, err
		}
		return nil, eris.Wrapf(ErrSubmitInFlight, "sqlite: wizard session %s", id)
	}
	return s.GetWizardSession(ctx, id)
}

func (s *SQLiteStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads
		 (id, first_name, last_name, email, phone, company, subject, message, form_type,
		  request_consultation, subscribe_newsletter, preferred_date, employee_count, industry, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Company,
		lead.Subject, lead.Message, lead.FormType, lead.RequestConsultation,
		lead.SubscribeNewsletter, lead.PreferredDate, lead.EmployeeCount, lead.Industry,
		lead.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert lead")
}

func (s *SQLiteStore) SetLeadTicketKey(ctx context.Context, leadID, ticketKey string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET ticket_key = ? WHERE id = ?`,
		ticketKey, leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set lead ticket key %s", leadID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: lead %s", leadID)
	}
	return nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, first_name, last_name, email, phone, company, subject, message, form_type,
	          request_consultation, subscribe_newsletter, preferred_date, employee_count, industry,
	          ticket_key, crm_id, crm_synced_at, created_at FROM leads WHERE true`
	args := []any{}

	if filter.FormType != "" {
		query += ` AND form_type = ?`
		args = append(args, filter.FormType)
	}
	if filter.Unsynced {
		query += ` AND crm_synced_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company,
			&l.Subject, &l.Message, &l.FormType, &l.RequestConsultation, &l.SubscribeNewsletter,
			&l.PreferredDate, &l.EmployeeCount, &l.Industry, &l.TicketKey, &l.CRMID,
			&l.CRMSyncedAt, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) MarkLeadSynced(ctx context.Context, leadID, crmID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET crm_id = ?, crm_synced_at = ? WHERE id = ?`,
		crmID, time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark lead synced %s", leadID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: lead %s", leadID)
	}
	return nil
}

func (s *SQLiteStore) GetClientAccount(ctx context.Context, id string) (*model.ClientAccount, error) {
	var c model.ClientAccount
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, contact_email, contact_name, billing_customer_id, created_at FROM clients WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &c.ContactName, &c.BillingCustomerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: client %s", id)
		}
		return nil, eris.Wrapf(err, "sqlite: get client %s", id)
	}
	return &c, nil
}

func (s *SQLiteStore) GetClientByEmail(ctx context.Context, email string) (*model.ClientAccount, error) {
	var c model.ClientAccount
	err := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, contact_email, contact_name, billing_customer_id, created_at FROM clients WHERE contact_email = ?`,
		email,
	).Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &c.ContactName, &c.BillingCustomerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: client email %s", email)
		}
		return nil, eris.Wrapf(err, "sqlite: get client by email %s", email)
	}
	return &c, nil
}

func (s *SQLiteStore) ListServices(ctx context.Context, clientEmail string) ([]model.ServiceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_email, name, description, status, renews_at, created_at
		 FROM services WHERE client_email = ? ORDER BY created_at DESC`,
		clientEmail,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list services")
	}
	defer rows.Close()

	var services []model.ServiceRecord
	for rows.Next() {
		var sr model.ServiceRecord
		if err := rows.Scan(&sr.ID, &sr.ClientEmail, &sr.Name, &sr.Description,
			&sr.Status, &sr.RenewsAt, &sr.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan service")
		}
		services = append(services, sr)
	}
	return services, eris.Wrap(rows.Err(), "sqlite: list services iterate")
}

func (s *SQLiteStore) SetImpersonationFlag(ctx context.Context, adminID string, raw []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO impersonations (admin_id, target, started_at) VALUES (?, ?, ?)
		 ON CONFLICT (admin_id) DO UPDATE SET target = excluded.target, started_at = excluded.started_at`,
		adminID, string(raw), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: set impersonation flag")
}

func (s *SQLiteStore) GetImpersonationFlag(ctx context.Context, adminID string) ([]byte, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT target FROM impersonations WHERE admin_id = ?`,
		adminID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get impersonation flag")
	}
	return []byte(raw), nil
}

func (s *SQLiteStore) ClearImpersonationFlag(ctx context.Context, adminID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM impersonations WHERE admin_id = ?`, adminID)
	return eris.Wrap(err, "sqlite: clear impersonation flag")
}
