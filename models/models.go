package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Direction is the directional call issued by the oracle
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	switch d {
	case DirectionBuy, DirectionSell, DirectionHold:
		return true
	}
	return false
}

// Status is the grading state of a prediction
type Status string

const (
	StatusPending Status = "Pending"
	StatusWin     Status = "Win"
	StatusLoss    Status = "Loss"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusWin, StatusLoss:
		return true
	}
	return false
}

// Settled reports whether the prediction has been graded
func (s Status) Settled() bool {
	return s == StatusWin || s == StatusLoss
}

// PredictionEntry is one logged forecast
type PredictionEntry struct {
	ID             uuid.UUID           `json:"id"`
	Timestamp      time.Time           `json:"timestamp"`       // when the forecast was issued
	ReferenceRate  decimal.Decimal     `json:"reference_rate"`  // observed rate at issuance
	Direction      Direction           `json:"direction"`       // BUY, SELL, HOLD
	Status         Status              `json:"status"`          // Pending, Win, Loss
	SettlementRate decimal.NullDecimal `json:"settlement_rate"` // set once at grading time
}

// Validate checks the structural invariants of an entry
func (e *PredictionEntry) Validate() error {
	if e.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if e.ReferenceRate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("reference rate must be positive, got %s", e.ReferenceRate)
	}
	if !e.Direction.Valid() {
		return fmt.Errorf("unknown direction %q", e.Direction)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	if e.Status == StatusPending && e.SettlementRate.Valid {
		return errors.New("pending entry must not carry a settlement rate")
	}
	if e.Status.Settled() && !e.SettlementRate.Valid {
		return fmt.Errorf("%s entry must carry a settlement rate", e.Status)
	}
	return nil
}

// LedgerRecord is the persisted row layout of a PredictionEntry.
// Field names follow the sheet header: time, rate, pred, status, final_rate.
type LedgerRecord struct {
	Time      string `yaml:"time" json:"time"`
	Rate      string `yaml:"rate" json:"rate"`
	Pred      string `yaml:"pred" json:"pred"`
	Status    string `yaml:"status" json:"status"`
	FinalRate string `yaml:"final_rate" json:"final_rate"`
	ID        string `yaml:"id,omitempty" json:"id,omitempty"`
}

// Quote is the latest observed rate
type Quote struct {
	Symbol string          `json:"symbol"`
	Rate   decimal.Decimal `json:"rate"`
	At     time.Time       `json:"at"`
	Stale  bool            `json:"stale"` // last-known value served after a failed fetch
}

// Forecast is the oracle's answer
type Forecast struct {
	Direction Direction `json:"direction"`
	Rationale string    `json:"rationale"`
	Model     string    `json:"model"`
}
