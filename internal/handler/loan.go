package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/coopfin/loan-engine/internal/auth"
	"github.com/coopfin/loan-engine/internal/domain"
	"github.com/coopfin/loan-engine/internal/interest"
	"github.com/coopfin/loan-engine/pkg/export"
	"github.com/coopfin/loan-engine/pkg/response"
)

// LoanService is the slice of the service layer the HTTP handlers need.
type LoanService interface {
	ComputeTerms(ctx context.Context, memberNumber int64, amount decimal.Decimal, termMonths int) (*interest.Terms, error)
	Originate(ctx context.Context, memberNumber int64, amount decimal.Decimal, termMonths int) (*domain.Loan, error)
	UpdateStatus(ctx context.Context, memberNumber int64, status string) (*domain.Loan, error)
	ActiveLoan(ctx context.Context, memberNumber int64) (*domain.Loan, error)
	ListByStatus(ctx context.Context, status string) ([]*domain.Loan, error)
	History(ctx context.Context, memberNumber int64) ([]*domain.Loan, error)
	MakePayment(ctx context.Context, memberNumber int64, amount decimal.Decimal) (*domain.Loan, error)
	Stats(ctx context.Context, rng string) ([]*domain.Loan, error)
}

// PenaltyService triggers one penalty-accrual sweep.
type PenaltyService interface {
	Sweep(ctx context.Context, now time.Time) ([]domain.SweepResult, error)
}

type LoanHandler struct {
	service   LoanService
	penalties PenaltyService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService, penalties PenaltyService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		penalties: penalties,
		validator: NewValidator(),
	}
}

// ComputeTerms handles POST /loans/terms: a pricing preview, nothing is
// persisted.
func (h *LoanHandler) ComputeTerms(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanTermsRequest
	if !h.decode(w, r, &req) {
		return
	}

	terms, err := h.service.ComputeTerms(r.Context(), req.MemberNumber, req.Amount, req.TermMonths)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, terms)
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if !h.decode(w, r, &req) {
		return
	}

	loan, err := h.service.Originate(r.Context(), req.MemberNumber, req.Amount, req.TermMonths)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, loan)
}

// UpdateStatus handles PATCH /loans/status
func (h *LoanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	loan, err := h.service.UpdateStatus(r.Context(), req.MemberNumber, req.Status)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// LoansByStatus handles POST /loans/by-status
func (h *LoanHandler) LoansByStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.LoansByStatusRequest
	if !h.decode(w, r, &req) {
		return
	}

	loans, err := h.service.ListByStatus(r.Context(), req.Status)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// ActiveLoan handles GET /loans/active: a member reading their own approved
// loan, the one read that does not require the admin role.
func (h *LoanHandler) ActiveLoan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Authorization header required")
		return
	}

	loan, err := h.service.ActiveLoan(r.Context(), claims.MemberNumber)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// LookupLoan handles POST /loans/lookup: an admin reading a member's
// approved loan.
func (h *LoanHandler) LookupLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanLookupRequest
	if !h.decode(w, r, &req) {
		return
	}

	loan, err := h.service.ActiveLoan(r.Context(), req.MemberNumber)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loan)
}

// History handles POST /loans/history
func (h *LoanHandler) History(w http.ResponseWriter, r *http.Request) {
	var req domain.LoanLookupRequest
	if !h.decode(w, r, &req) {
		return
	}

	loans, err := h.service.History(r.Context(), req.MemberNumber)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

// MakePayment handles POST /loans/payment
func (h *LoanHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.MakePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	loan, err := h.service.MakePayment(r.Context(), req.MemberNumber, req.Amount)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.PaymentResponse{
		Loan:            loan,
		RepaymentAmount: loan.RepaymentAmount,
	})
}

// Stats handles GET /loans/stats?range=today|week|month and streams a CSV
// report.
func (h *LoanHandler) Stats(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")

	loans, err := h.service.Stats(r.Context(), rng)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	now := time.Now()
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(rng, now)+`"`)

	if err := export.WriteCSV(w, loans); err != nil {
		response.InternalServerError(w, "Unable to write report", err)
	}
}

// PenaltySweep handles POST /internal/penalty-sweep. The route is guarded by
// the internal scheduler token, never exposed to end users.
func (h *LoanHandler) PenaltySweep(w http.ResponseWriter, r *http.Request) {
	results, err := h.penalties.Sweep(r.Context(), time.Now())
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, results)
}

// decode parses and validates the JSON request body. Returns false after
// writing the error response if the body is unusable.
func (h *LoanHandler) decode(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}
