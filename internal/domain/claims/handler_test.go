package claims

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimwise/claimwise/internal/platform/auth"
)

func newHandlerFixture(t *testing.T) (*Handler, *echo.Echo, *fixture) {
	t.Helper()
	f := newFixture(t)
	return NewHandler(f.svc), echo.New(), f
}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, userID uuid.UUID, role string) echo.Context {
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, userID.String())
	ctx = context.WithValue(ctx, auth.RoleKey, role)
	return e.NewContext(req.WithContext(ctx), rec)
}

const createBody = `{
	"patient": {"firstName": "Maria", "lastName": "Gonzalez", "dateOfBirth": "1985-06-15", "memberId": "MBR-4411"},
	"service": {"cptCode": "99213", "icd10Code": "E11.9", "serviceDate": "2025-03-01", "billedAmount": 240.00}
}`

func TestHandler_CreateClaim(t *testing.T) {
	h, e, f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.staffID, auth.RoleProviderStaff)

	if err := h.CreateClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var claim Claim
	if err := json.Unmarshal(rec.Body.Bytes(), &claim); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if claim.ClaimNumber != "CLM-20250307-0001" {
		t.Errorf("claim number = %s", claim.ClaimNumber)
	}
	if claim.Status != StatusSubmitted {
		t.Errorf("status = %s", claim.Status)
	}
}

func TestHandler_CreateClaim_ValidationError(t *testing.T) {
	h, e, f := newHandlerFixture(t)

	body := strings.Replace(createBody, `"99213"`, `"bad"`, 1)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.staffID, auth.RoleProviderStaff)

	err := h.CreateClaim(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_GetClaim(t *testing.T) {
	h, e, f := newHandlerFixture(t)
	claim := submitClaim(t, f)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)
	c.SetParamNames("id")
	c.SetParamValues(claim.ID.String())

	if err := h.GetClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var detail Detail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Claim == nil || detail.Claim.ID != claim.ID {
		t.Errorf("detail claim = %+v", detail.Claim)
	}
	if len(detail.AuditTrail) != 1 {
		t.Errorf("audit trail has %d entries, want 1", len(detail.AuditTrail))
	}
}

func TestHandler_GetClaim_NotFound(t *testing.T) {
	h, e, f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetClaim(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestHandler_GetClaim_InvalidID(t *testing.T) {
	h, e, f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetClaim(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_ListClaims(t *testing.T) {
	h, e, f := newHandlerFixture(t)
	submitClaim(t, f)
	submitClaim(t, f)

	req := httptest.NewRequest(http.MethodGet, "/?limit=1", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)

	if err := h.ListClaims(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data    []*Summary `json:"data"`
		Total   int        `json:"total"`
		HasMore bool       `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Data) != 1 || !resp.HasMore {
		t.Errorf("resp = total %d, %d rows, has_more %v", resp.Total, len(resp.Data), resp.HasMore)
	}
}

func TestHandler_ListClaims_BadStatusFilter(t *testing.T) {
	h, e, f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?status=pending", nil)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)

	err := h.ListClaims(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
}

func TestHandler_AdjudicateClaim(t *testing.T) {
	h, e, f := newHandlerFixture(t)
	claim := submitClaim(t, f)

	body := `{"decision": "approve", "approved_amount": 200.00}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)
	c.SetParamNames("id")
	c.SetParamValues(claim.ID.String())

	if err := h.AdjudicateClaim(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary DecisionSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Status != StatusApproved {
		t.Errorf("status = %s", summary.Status)
	}
}

func TestHandler_AdjudicateClaim_Conflict(t *testing.T) {
	h, e, f := newHandlerFixture(t)
	claim := submitClaim(t, f)
	if _, err := f.svc.Adjudicate(context.Background(), f.processorID, claim.ID, AdjudicationInput{
		Decision:       DecisionApprove,
		ApprovedAmount: floatPtr(200),
	}); err != nil {
		t.Fatal(err)
	}

	body := `{"decision": "deny", "denial_reason_code": "DUPLICATE_CLAIM", "denial_explanation": "This claim duplicates a previously submitted service line."}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, f.processorID, auth.RolePayerProcessor)
	c.SetParamNames("id")
	c.SetParamValues(claim.ID.String())

	err := h.AdjudicateClaim(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
}

func TestHandler_Routes_RoleEnforcement(t *testing.T) {
	h, e, f := newHandlerFixture(t)
	api := e.Group("/api/v1")
	h.RegisterRoutes(api)
	claim := submitClaim(t, f)

	// Provider staff cannot adjudicate.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/"+claim.ID.String()+"/adjudicate",
		strings.NewReader(`{"decision": "approve", "approved_amount": 100}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, f.staffID.String())
	ctx = context.WithValue(ctx, auth.RoleKey, auth.RoleProviderStaff)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff adjudicate = %d, want 403", rec.Code)
	}

	// Payer processors cannot submit.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/claims", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx = context.WithValue(req.Context(), auth.UserIDKey, f.processorID.String())
	ctx = context.WithValue(ctx, auth.RoleKey, auth.RolePayerProcessor)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("processor submit = %d, want 403", rec.Code)
	}
}
