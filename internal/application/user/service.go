package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pots-api/internal/domain"
	"github.com/go-pots-api/internal/pkg/clock"
	"github.com/go-pots-api/internal/pkg/id"
	"github.com/go-pots-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// demoOTP is the only code the stubbed OTP check accepts.
const demoOTP = "000000"

// mockBankAccounts is the stubbed account-aggregator dataset keyed by PAN.
var mockBankAccounts = map[string][]domain.LinkedAccount{
	"ABCDE1234F": {
		{BankName: "State Bank of India", AccountNumber: "1234567890", IFSCCode: "SBIN0001234", Balance: 50000},
		{BankName: "HDFC Bank", AccountNumber: "0987654321", IFSCCode: "HDFC0001234", Balance: 75000},
	},
	"PQRST5678G": {
		{BankName: "ICICI Bank", AccountNumber: "1122334455", IFSCCode: "ICIC0001234", Balance: 60000},
	},
}

// PANDetails is the mock OCR extraction result for an uploaded PAN card.
type PANDetails struct {
	Name        string `json:"name"`
	PAN         string `json:"pan"`
	DateOfBirth string `json:"date_of_birth"`
	DocumentURL string `json:"document_url,omitempty"`
}

type Service interface {
	// Register creates the account with its opening wallet balance and
	// returns a signed bearer token alongside the user.
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error)
	// Login accepts PAN or email plus password.
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	LinkedAccounts(ctx context.Context, pan string) ([]domain.LinkedAccount, error)
	VerifyOTP(ctx context.Context, otp string) error
	// ExtractPANDetails stores the uploaded card image and returns the
	// (stubbed) extracted fields.
	ExtractPANDetails(ctx context.Context, filename string, image io.Reader) (*PANDetails, error)
}

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPAN(ctx context.Context, pan string) (*domain.User, error)
}

type documentStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type jwtSigner interface {
	Sign(userID, role string) (string, error)
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo      userStore
	documents documentStore
	jwt       jwtSigner
	mailer    mailSender
	clk       clock.Clock
}

type ServiceDeps struct {
	UserRepo      userStore
	DocumentStore documentStore
	JWTProvider   jwtSigner
	Mailer        mailSender
	Clock         clock.Clock
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.UserRepo,
		documents: deps.DocumentStore,
		jwt:       deps.JWTProvider,
		mailer:    deps.Mailer,
		clk:       deps.Clock,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, string, error) {
	if !validate.PAN(req.PAN) {
		return nil, "", fmt.Errorf("invalid PAN format, must be like ABCDE1234F: %w", domain.ErrBadRequest)
	}
	if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
		return nil, "", fmt.Errorf("date of birth must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByPAN(ctx, req.PAN); err == nil {
		return nil, "", fmt.Errorf("PAN already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := s.clk.Now()
	u := &domain.User{
		UserID:         id.New(),
		Name:           req.Name,
		Email:          req.Email,
		PasswordHash:   string(hash),
		PAN:            req.PAN,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Role:           domain.RoleUser,
		BankBalance:    domain.OpeningBalance,
		LinkedAccounts: mockBankAccounts[req.PAN],
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	bearer, err := s.jwt.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	s.sendWelcome(u)
	return u, bearer, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, string, error) {
	var (
		u   *domain.User
		err error
	)
	switch {
	case req.PAN != "":
		u, err = s.repo.GetByPAN(ctx, req.PAN)
	case req.Email != "":
		u, err = s.repo.GetByEmail(ctx, req.Email)
	default:
		return nil, "", fmt.Errorf("pan or email required: %w", domain.ErrBadRequest)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	bearer, err := s.jwt.Sign(u.UserID, u.Role)
	if err != nil {
		return nil, "", err
	}
	return u, bearer, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) LinkedAccounts(_ context.Context, pan string) ([]domain.LinkedAccount, error) {
	if pan == "" {
		return nil, fmt.Errorf("PAN number is required: %w", domain.ErrBadRequest)
	}
	return mockBankAccounts[pan], nil
}

func (s *service) VerifyOTP(_ context.Context, otp string) error {
	if otp != demoOTP {
		return fmt.Errorf("invalid OTP: %w", domain.ErrBadRequest)
	}
	return nil
}

func (s *service) ExtractPANDetails(ctx context.Context, filename string, image io.Reader) (*PANDetails, error) {
	details := &PANDetails{
		Name:        "JOHN DOE",
		PAN:         "ABCDE1234F",
		DateOfBirth: "1990-01-01",
	}
	if s.documents != nil && image != nil {
		key := fmt.Sprintf("pan-cards/%s-%s", id.New(), filename)
		url, err := s.documents.Upload(ctx, key, image, contentType(filename))
		if err != nil {
			// the extraction stub still answers; the stored copy is a bonus
			slog.Error("pan card upload failed", "key", key, "err", err)
		} else {
			details.DocumentURL = url
		}
	}
	return details, nil
}

func (s *service) sendWelcome(u *domain.User) {
	if s.mailer == nil {
		return
	}
	body := fmt.Sprintf("Hi %s,\n\nYour account is ready. Your wallet starts with a balance of %d.\n", u.Name, u.BankBalance)
	if err := s.mailer.SendEmail(u.Email, "Welcome aboard", body); err != nil {
		slog.Error("welcome email failed", "user_id", u.UserID, "err", err)
	}
}

func contentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
