package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// OpeningBalance is credited to every new wallet at registration.
const OpeningBalance = 150000

// User is the aggregate root: wallet balance, embedded reward ledger and
// embedded notification feed all live on one document so a single
// version-checked save covers them atomically.
type User struct {
	UserID         string          `json:"id" dynamodbav:"user_id"`
	Name           string          `json:"name" dynamodbav:"name"`
	Email          string          `json:"email" dynamodbav:"email"`
	PasswordHash   string          `json:"-" dynamodbav:"password_hash"`
	PAN            string          `json:"pan" dynamodbav:"pan"`
	Phone          string          `json:"phone" dynamodbav:"phone"`
	DateOfBirth    string          `json:"date_of_birth" dynamodbav:"date_of_birth"` // YYYY-MM-DD
	Role           string          `json:"role" dynamodbav:"role"`
	BankBalance    int64           `json:"bank_balance" dynamodbav:"bank_balance"`
	LinkedAccounts []LinkedAccount `json:"linked_accounts" dynamodbav:"linked_accounts"`
	Rewards        RewardLedger    `json:"rewards" dynamodbav:"rewards"`
	Notifications  []Notification  `json:"notifications" dynamodbav:"notifications"`
	// Version guards read-modify-write cycles: saves are conditional on the
	// version read, and bump it by one.
	Version   int64     `json:"-" dynamodbav:"version"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// LinkedAccount is an external bank account resolved at registration from the
// mock account-aggregator lookup.
type LinkedAccount struct {
	BankName      string `json:"bank_name" dynamodbav:"bank_name"`
	AccountNumber string `json:"account_number" dynamodbav:"account_number"`
	IFSCCode      string `json:"ifsc_code" dynamodbav:"ifsc_code"`
	Balance       int64  `json:"balance" dynamodbav:"balance"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	PAN         string `json:"pan" validate:"required,pan"`
	Phone       string `json:"phone" validate:"required,max=15"`
	DateOfBirth string `json:"date_of_birth" validate:"required"` // YYYY-MM-DD
}

type LoginRequest struct {
	// PAN or email; either identifies the account.
	PAN      string `json:"pan"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}
