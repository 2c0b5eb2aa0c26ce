package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one order applied by the broker, as kept in the journal
type OrderRecord struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	RunID     string          `gorm:"index" json:"run_id"`
	StockName string          `gorm:"index" json:"stock_name"`
	Price     decimal.Decimal `gorm:"type:decimal(20,8)" json:"price"`
	AppliedAt time.Time       `json:"applied_at"`
}

// RunInfo summarizes one simulation run
type RunInfo struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Traders    int       `json:"traders"`
	Quota      int       `json:"quota"`
	Completed  int       `json:"completed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
