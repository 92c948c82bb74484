package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodbank/internal/inventory"
	"bloodbank/internal/inventory/service"
	"bloodbank/internal/inventory/store"
	"bloodbank/internal/platform/middleware"
	id "bloodbank/pkg/domain"
)

// staticValidator maps bearer tokens directly to claims, standing in for the
// real JWT validator.
type staticValidator struct {
	tokens map[string]*middleware.JWTClaims
}

func (v *staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return nil, assert.AnError
}

func newTestRouter(t *testing.T) (chi.Router, *store.MemoryStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewMemoryStore()
	svc := service.New(st, logger)

	validator := &staticValidator{tokens: map[string]*middleware.JWTClaims{
		"staff-token": {UserID: id.NewUserID(), Role: id.RoleStaff},
		"donor-token": {UserID: id.NewUserID(), Role: id.RoleDonor},
	}}

	r := chi.NewRouter()
	New(svc, logger, validator).Register(r)
	return r, st
}

func doRequest(t *testing.T, router chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreditEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/inventory/credit", "staff-token",
		`{"bloodType":"A+","amount":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got inventory.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, id.APos, got.BloodType)
	assert.Equal(t, 5, got.Quantity)
	assert.NotNil(t, got.UpdatedBy, "credit records who stocked the shelf")
}

func TestDebitEndpointInsufficientStock(t *testing.T) {
	router, st := newTestRouter(t)
	seed(t, st, id.ONeg, 2)

	rec := doRequest(t, router, http.MethodPost, "/inventory/debit", "staff-token",
		`{"bloodType":"O-","amount":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_stock")
}

func TestGetAndListEndpoints(t *testing.T) {
	router, st := newTestRouter(t)
	seed(t, st, id.APos, 3)
	seed(t, st, id.ONeg, 1)

	rec := doRequest(t, router, http.MethodGet, "/inventory/A+", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/inventory/AB-", "staff-token", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/inventory/", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []inventory.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestAvailabilityEndpoint(t *testing.T) {
	router, st := newTestRouter(t)
	seed(t, st, id.APos, 5)
	seed(t, st, id.ONeg, 3)

	rec := doRequest(t, router, http.MethodGet, "/inventory/A+/availability?amount=10", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report inventory.AvailabilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.False(t, report.IsAvailable)
	assert.Equal(t, 10, report.RequestedAmount)
	assert.Len(t, report.AvailableCompatibleTypes, 2)

	rec = doRequest(t, router, http.MethodGet, "/inventory/A+/availability?amount=x", "staff-token", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthorization(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/inventory/", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("donor cannot mutate stock", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/inventory/credit", "donor-token",
			`{"bloodType":"A+","amount":1}`)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("donor cannot read the ledger", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/inventory/", "donor-token", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func seed(t *testing.T, st *store.MemoryStore, bloodType id.BloodType, amount int) {
	t.Helper()
	_, err := st.Credit(context.Background(), bloodType, amount, nil, time.Now().UTC())
	require.NoError(t, err)
}
