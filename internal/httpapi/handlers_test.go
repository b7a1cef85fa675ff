package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"studioluzi/backoffice/internal/domain"
	"studioluzi/backoffice/internal/service"
	"studioluzi/backoffice/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) (*API, *memory.Store) {
	t.Helper()

	repo := memory.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("luzi123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	err = repo.CreateUser(context.Background(), domain.UserAccount{
		Email:     "owner@studioluzi.local",
		Password:  string(hash),
		Approved:  true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	svc := service.New(repo, nil)
	auth := NewAuthManager("test-secret-key", time.Hour, repo)
	return New(svc, auth, "*"), repo
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "owner@studioluzi.local",
		"password": "luzi123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var body domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if body.AccessToken == "" {
		t.Fatal("expected access token")
	}
	return body.AccessToken
}

func TestHandleHealth(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body)
	}
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/products", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterThenLoginRequiresApproval(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "nova@studioluzi.local", "password": "segredo1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "nova@studioluzi.local", "password": "segredo1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected pending account rejected, got %d", rec.Code)
	}

	token := login(t, handler)
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/approve", token, map[string]string{
		"email": "nova@studioluzi.local",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "nova@studioluzi.local", "password": "segredo1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login after approval, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestSaleFlowOverHTTP(t *testing.T) {
	api, repo := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", token, domain.ProductCreateRequest{
		Code: "FM-1", Name: "Base Matte", CostPrice: 10, SellPrice: 30, StockQuantity: 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var productResp struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&productResp); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/salons", token, domain.SalonCreateRequest{
		Name: "Espaço Bella", CommissionRate: 20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create salon: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var salonResp struct {
		Salon domain.Salon `json:"salon"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&salonResp); err != nil {
		t.Fatalf("decode salon: %v", err)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/consignments", token, map[string]any{
		"salon_id": salonResp.Salon.ID, "product_id": productResp.Product.ID, "quantity": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create consignment: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
		"type":            domain.SaleTypeConsignment,
		"origin_salon_id": salonResp.Salon.ID,
		"payment_method":  domain.PaymentPix,
		"items":           []map[string]any{{"product_id": productResp.Product.ID, "quantity": 3}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var saleResp struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&saleResp); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if saleResp.Sale.TotalValue != 90 {
		t.Fatalf("expected total 90, got %v", saleResp.Sale.TotalValue)
	}

	product, err := repo.GetProduct(context.Background(), productResp.Product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.StockQuantity != 5 || product.ConsignedQuantity != 2 {
		t.Fatalf("expected 5/2, got %d/%d", product.StockQuantity, product.ConsignedQuantity)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/reports/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var summaryResp struct {
		Summary struct {
			Revenue    float64 `json:"revenue"`
			Commission float64 `json:"commission"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&summaryResp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summaryResp.Summary.Revenue != 90 || summaryResp.Summary.Commission != 18 {
		t.Fatalf("unexpected summary: %+v", summaryResp.Summary)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/sales/"+saleResp.Sale.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete sale: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	product, _ = repo.GetProduct(context.Background(), productResp.Product.ID)
	if product.StockQuantity != 5 || product.ConsignedQuantity != 5 {
		t.Fatalf("expected 5/5 restored, got %d/%d", product.StockQuantity, product.ConsignedQuantity)
	}
}

func TestUpdateProductStockOverHTTP(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/products", token, domain.ProductCreateRequest{
		Code: "FM-2", Name: "Sérum", CostPrice: 40, SellPrice: 110, StockQuantity: 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var productResp struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&productResp); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/products/"+productResp.Product.ID, token, map[string]any{
		"stock_quantity": 12,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("stock correction: expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var updatedResp struct {
		Product domain.Product `json:"product"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&updatedResp); err != nil {
		t.Fatalf("decode updated: %v", err)
	}
	if updatedResp.Product.StockQuantity != 12 {
		t.Fatalf("expected stock 12, got %d", updatedResp.Product.StockQuantity)
	}
	if updatedResp.Product.Name != "Sérum" || updatedResp.Product.SellPrice != 110 {
		t.Fatalf("stock-only edit must not touch other fields: %+v", updatedResp.Product)
	}
}

func TestCreateSaleValidationOverHTTP(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", token, map[string]any{
		"type": domain.SaleTypeDirect, "payment_method": domain.PaymentCash, "items": []any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", rec.Code)
	}
}

func TestSaleNotFound(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()
	token := login(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/sales/missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	api, _ := newTestAPI(t)
	handler := api.Handler()

	var last int
	for i := 0; i < 7; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "owner@studioluzi.local", "password": "wrong",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}
