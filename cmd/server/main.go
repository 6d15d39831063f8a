package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	webAdapter "printflow/internal/adapters/web"
	"printflow/internal/ai"
	"printflow/internal/app"
	"printflow/internal/blob"
	"printflow/internal/config"
	"printflow/internal/core"
	"printflow/internal/db"
	"printflow/internal/mail"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	blobs, err := blob.NewStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	var mailer core.Mailer = mail.LogMailer{}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			From: cfg.SMTP.From,
		})
	}

	var extractor ai.ExtractorService
	if cfg.OpenAI.APIKey != "" {
		extractor = ai.NewExtractor(cfg.OpenAI.APIKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, PO field extraction disabled")
	}

	dispatcher := core.NewDispatcher(cfg.Server.Timeout)
	defer dispatcher.Wait()

	companies := core.NewCompanyService(pool)
	quotes := core.NewQuoteService(pool, companies)
	jobs := core.NewJobService(pool, companies)
	pos := core.NewPurchaseOrderService(pool, companies)
	proofs := core.NewProofService(pool, jobs)
	shipments := core.NewShipmentService(pool, jobs)
	invoices := core.NewInvoiceService(pool, companies, pos, dispatcher)
	inventory := core.NewInventoryService(pool, companies)
	notes := core.NewNotificationService(pool)
	autoPO := core.NewAutoPOOrchestrator(pos)
	reconciler := core.NewWebhookReconciler(jobs, pos, companies, notes, mailer, dispatcher)

	svc := app.NewAppService(companies, quotes, jobs, pos, proofs, shipments,
		invoices, inventory, notes, autoPO, reconciler, blobs, extractor)

	handler := webAdapter.NewHandler(svc, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Printf("%s starting on %s", cfg.App.Name, addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
