package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"printflow/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the dedicated test database, wipes it, and seeds
// the fixed company set. Integration tests skip when TEST_DATABASE_URL is
// not set.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE paper_transactions, paper_stock, notifications, shipments,
			proofs, invoices, purchase_orders, jobs, quotes, companies CASCADE;

		INSERT INTO companies (code, name, role, vendor_code, production_email) VALUES
		('IMPACT',     'Impact Direct', 'broker',   NULL,  'orders@impactdirect.example'),
		('BRADFORD',   'Bradford',      'vendor',   '100', 'production@bradford.example'),
		('JDGRAPHIC',  'JD Graphic',    'vendor',   '200', 'production@jdgraphic.example'),
		('JJSA',       'JJSA',          'customer', NULL,  'ap@jjsa.example'),
		('BALLANTINE', 'Ballantine',    'customer', NULL,  'ap@ballantine.example');
	`)
	if err != nil {
		t.Fatalf("seed test database: %v", err)
	}

	return pool
}

// recordingMailer captures sends instead of talking to SMTP.
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	m.sent = append(m.sent, to)
	return nil
}

// services bundles the service graph the integration tests exercise.
type services struct {
	companies  core.CompanyService
	quotes     core.QuoteService
	jobs       core.JobService
	pos        core.PurchaseOrderService
	proofs     core.ProofService
	shipments  core.ShipmentService
	invoices   core.InvoiceService
	inventory  core.InventoryService
	notes      core.NotificationService
	autoPO     *core.AutoPOOrchestrator
	reconciler *core.WebhookReconciler
	dispatcher *core.Dispatcher
	mailer     *recordingMailer
}

func newServices(pool *pgxpool.Pool) *services {
	companies := core.NewCompanyService(pool)
	jobs := core.NewJobService(pool, companies)
	pos := core.NewPurchaseOrderService(pool, companies)
	notes := core.NewNotificationService(pool)
	dispatcher := core.NewDispatcher(5 * time.Second)
	mailer := &recordingMailer{}
	return &services{
		companies:  companies,
		quotes:     core.NewQuoteService(pool, companies),
		jobs:       jobs,
		pos:        pos,
		proofs:     core.NewProofService(pool, jobs),
		shipments:  core.NewShipmentService(pool, jobs),
		invoices:   core.NewInvoiceService(pool, companies, pos, dispatcher),
		inventory:  core.NewInventoryService(pool, companies),
		notes:      notes,
		autoPO:     core.NewAutoPOOrchestrator(pos),
		reconciler: core.NewWebhookReconciler(jobs, pos, companies, notes, mailer, dispatcher),
		dispatcher: dispatcher,
		mailer:     mailer,
	}
}
