package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/northwind-msp/portal-api/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS wizard_sessions (
	id         TEXT PRIMARY KEY,
	step       INTEGER NOT NULL DEFAULT 0,
	submitting BOOLEAN NOT NULL DEFAULT FALSE,
	answers    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
	request_consultation BOOLEAN NOT NULL DEFAULT FALSE,
	subscribe_newsletter BOOLEAN NOT NULL DEFAULT FALSE,
	preferred_date       TEXT,
	employee_count       TEXT,
	industry             TEXT,
	ticket_key           TEXT NOT NULL DEFAULT '',
	crm_id               TEXT NOT NULL DEFAULT '',
	crm_synced_at        TIMESTAMPTZ,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS clients (
	id                  TEXT PRIMARY KEY,
	company_name        TEXT NOT NULL,
	contact_email       TEXT NOT NULL UNIQUE,
	contact_name        TEXT NOT NULL DEFAULT '',
	billing_customer_id TEXT NOT NULL DEFAULT '',
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS services (
	id           TEXT PRIMARY KEY,
	client_email TEXT NOT NULL,
	name         TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'active',
	renews_at    TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS impersonations (
	admin_id   TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_form_type ON leads(form_type);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_crm_synced ON leads(crm_synced_at);
CREATE INDEX IF NOT EXISTS idx_services_client_email ON services(client_email);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateWizardSession(ctx context.Context) (*model.WizardSession, error) {
	sess := &model.WizardSession{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal answers")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO wizard_sessions (id, step, submitting, answers, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sess.ID, sess.Step, sess.Submitting, answersJSON, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert wizard session")
	}
	return sess, nil
}

func (s *PostgresStore) GetWizardSession(ctx context.Context, id string) (*model.WizardSession, error) {
	var sess model.WizardSession
	var answersJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, step, submitting, answers, created_at, updated_at FROM wizard_sessions WHERE id = $1`,
		id,
	).Scan(&sess.ID, &sess.Step, &sess.Submitting, &answersJSON, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: wizard session %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get wizard session %s", id)
	}
	if err := json.Unmarshal(answersJSON, &sess.Answers); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal answers")
	}
	return &sess, nil
}

func (s *PostgresStore) SaveWizardSession(ctx context.Context, sess *model.WizardSession) error {
	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal answers")
	}

	sess.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE wizard_sessions SET step = $1, submitting = $2, answers = $3, updated_at = $4 WHERE id = $5`,
		sess.Step, sess.Submitting, answersJSON, sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: save wizard session %s", sess.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: wizard session %s", sess.ID)
	}
	return nil
}

func (s *PostgresStore) BeginSubmit(ctx context.Context, id string) (*model.WizardSession, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE wizard_sessions SET submitting = TRUE, updated_at = $1 WHERE id = $2 AND submitting = FALSE`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: begin submit %s", id)
	}
	if tag.RowsAffected() == 0 {
		// Either the session does not exist or a submit is in flight.
		if _, err := s.GetWizardSession(ctx, id); err != nil {
			return nil, err
		}
		return nil, eris.Wrapf(ErrSubmitInFlight, "postgres: wizard session %s", id)
	}
	return s.GetWizardSession(ctx, id)
}

func (s *PostgresStore) CreateLead(ctx context.Context, lead *model.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads
		 (id, first_name, last_name, email, phone, company, subject, message, form_type,
		  request_consultation, subscribe_newsletter, preferred_date, employee_count, industry, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Company,
		lead.Subject, lead.Message, lead.FormType, lead.RequestConsultation,
		lead.SubscribeNewsletter, lead.PreferredDate, lead.EmployeeCount, lead.Industry,
		lead.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert lead")
}

func (s *PostgresStore) SetLeadTicketKey(ctx context.Context, leadID, ticketKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET ticket_key = $1 WHERE id = $2`,
		ticketKey, leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set lead ticket key %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", leadID)
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT id, first_name, last_name, email, phone, company, subject, message, form_type,
	          request_consultation, subscribe_newsletter, preferred_date, employee_count, industry,
	          ticket_key, crm_id, crm_synced_at, created_at FROM leads WHERE true`
	args := []any{}
	argIdx := 1

	if filter.FormType != "" {
		query += fmt.Sprintf(` AND form_type = $%d`, argIdx)
		args = append(args, filter.FormType)
		argIdx++
	}
	if filter.Unsynced {
		query += ` AND crm_synced_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company,
			&l.Subject, &l.Message, &l.FormType, &l.RequestConsultation, &l.SubscribeNewsletter,
			&l.PreferredDate, &l.EmployeeCount, &l.Industry, &l.TicketKey, &l.CRMID,
			&l.CRMSyncedAt, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) MarkLeadSynced(ctx context.Context, leadID, crmID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET crm_id = $1, crm_synced_at = $2 WHERE id = $3`,
		crmID, time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark lead synced %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: lead %s", leadID)
	}
	return nil
}

func (s *PostgresStore) GetClientAccount(ctx context.Context, id string) (*model.ClientAccount, error) {
	var c model.ClientAccount
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, contact_email, contact_name, billing_customer_id, created_at FROM clients WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &c.ContactName, &c.BillingCustomerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: client %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get client %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) GetClientByEmail(ctx context.Context, email string) (*model.ClientAccount, error) {
	var c model.ClientAccount
	err := s.pool.QueryRow(ctx,
		`SELECT id, company_name, contact_email, contact_name, billing_customer_id, created_at FROM clients WHERE contact_email = $1`,
		email,
	).Scan(&c.ID, &c.CompanyName, &c.ContactEmail, &c.ContactName, &c.BillingCustomerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: client email %s", email)
		}
		return nil, eris.Wrapf(err, "postgres: get client by email %s", email)
	}
	return &c, nil
}

func (s *PostgresStore) ListServices(ctx context.Context, clientEmail string) ([]model.ServiceRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, client_email, name, description, status, renews_at, created_at
		 FROM services WHERE client_email = $1 ORDER BY created_at DESC`,
		clientEmail,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list services")
	}
	defer rows.Close()

	var services []model.ServiceRecord
	for rows.Next() {
		var sr model.ServiceRecord
		if err := rows.Scan(&sr.ID, &sr.ClientEmail, &sr.Name, &sr.Description,
			&sr.Status, &sr.RenewsAt, &sr.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan service")
		}
		services = append(services, sr)
	}
	return services, eris.Wrap(rows.Err(), "postgres: list services iterate")
}

func (s *PostgresStore) SetImpersonationFlag(ctx context.Context, adminID string, raw []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO impersonations (admin_id, target, started_at) VALUES ($1, $2, $3)
		 ON CONFLICT (admin_id) DO UPDATE SET target = $2, started_at = $3`,
		adminID, string(raw), time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: set impersonation flag")
}

func (s *PostgresStore) GetImpersonationFlag(ctx context.Context, adminID string) ([]byte, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT target FROM impersonations WHERE admin_id = $1`,
		adminID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get impersonation flag")
	}
	return []byte(raw), nil
}

func (s *PostgresStore) ClearImpersonationFlag(ctx context.Context, adminID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM impersonations WHERE admin_id = $1`, adminID)
	return eris.Wrap(err, "postgres: clear impersonation flag")
}
