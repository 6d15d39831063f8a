package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaperTransactionKind string

const (
	PaperAdd       PaperTransactionKind = "ADD"
	PaperRemove    PaperTransactionKind = "REMOVE"
	PaperAdjust    PaperTransactionKind = "ADJUST"
	PaperDeductJob PaperTransactionKind = "DEDUCT_JOB"
)

// PaperStock is the current on-hand quantity of one roll type at one company.
type PaperStock struct {
	ID          int             `json:"id"`
	CompanyID   int             `json:"company_id"`
	CompanyCode string          `json:"company_code"`
	RollType    string          `json:"roll_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PaperTransaction is one audit row in the stock ledger. balance_after is the
// stock quantity immediately after the movement was applied.
type PaperTransaction struct {
	ID           int                  `json:"id"`
	StockID      int                  `json:"stock_id"`
	JobID        *int                 `json:"job_id,omitempty"`
	Kind         PaperTransactionKind `json:"kind"`
	Quantity     decimal.Decimal      `json:"quantity"`
	BalanceAfter decimal.Decimal      `json:"balance_after"`
	Note         string               `json:"note"`
	CreatedAt    time.Time            `json:"created_at"`
}
