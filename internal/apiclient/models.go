package apiclient

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is a FinTrack account as returned by the user service
type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense is a single expense record
type Expense struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Report is a generated report; Data holds a JSON-encoded ReportData
type Report struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Type      string    `json:"type"`   // monthly, annual
	Period    string    `json:"period"` // 2024-01, 2024
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportData is the aggregate stored inside a Report
type ReportData struct {
	TotalExpenses float64            `json:"total_expenses"`
	ExpenseCount  int64              `json:"expense_count"`
	Categories    map[string]float64 `json:"categories"`
	Period        string             `json:"period"`
}

// Summary decodes the report's Data field
func (r Report) Summary() (ReportData, error) {
	var data ReportData
	if r.Data == "" {
		return data, nil
	}
	if err := json.Unmarshal([]byte(r.Data), &data); err != nil {
		return data, fmt.Errorf("failed to decode report data: %w", err)
	}
	return data, nil
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ExpenseRequest is the body for creating or updating an expense
type ExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ExpenseList is the body of GET /expenses
type ExpenseList struct {
	Expenses []Expense `json:"expenses"`
}

// ReportList is the body of GET /reports
type ReportList struct {
	Reports []Report `json:"reports"`
}
