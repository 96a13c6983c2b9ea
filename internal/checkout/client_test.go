package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/twillco/storefront/internal/payment"
	"github.com/twillco/storefront/pkg/catalog"
)

func TestAPIClient_CreatePaymentIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/create-payment-intent" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Amount != 6998 || req.Customer.Email != "ada@example.com" {
			t.Errorf("Unexpected body %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"clientSecret":"pi_1_secret_2"}`)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL + "/")
	secret, err := c.CreatePaymentIntent(context.Background(), OrderRequest{
		Amount:   6998,
		Customer: payment.Customer{Email: "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("CreatePaymentIntent failed: %v", err)
	}
	if secret != "pi_1_secret_2" {
		t.Errorf("Expected client secret, got %q", secret)
	}
}

func TestAPIClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Invalid amount"}`)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL)
	_, err := c.CreatePaymentIntent(context.Background(), OrderRequest{Amount: 10})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "Invalid amount" {
		t.Errorf("Unexpected error %+v", apiErr)
	}
}

func TestAPIClient_UploadDesign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("design")
		if err != nil {
			t.Errorf("Expected design field: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "logo.png" || string(data) != "PNGDATA" {
			t.Errorf("Unexpected upload %s %q", header.Filename, data)
		}

		io.WriteString(w, `{"success":true,"filename":"design-1.png","path":"/uploads/design-1.png"}`)
	}))
	defer srv.Close()

	res, err := NewAPIClient(srv.URL).UploadDesign(context.Background(), "logo.png", []byte("PNGDATA"))
	if err != nil {
		t.Fatalf("UploadDesign failed: %v", err)
	}
	if !res.Success || res.Path != "/uploads/design-1.png" {
		t.Errorf("Unexpected result %+v", res)
	}
}

func TestAPIClient_OrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order-status/pi_9" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"status":"succeeded","amount":1999,"customer":{"customerName":"Ada"}}`)
	}))
	defer srv.Close()

	st, err := NewAPIClient(srv.URL).OrderStatus(context.Background(), "pi_9")
	if err != nil {
		t.Fatalf("OrderStatus failed: %v", err)
	}
	if st.Status != "succeeded" || st.Amount != 1999 || st.Customer["customerName"] != "Ada" {
		t.Errorf("Unexpected status %+v", st)
	}
}

func TestAPIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewAPIClient(url).Health(context.Background()); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestAPIClient_LabelURL(t *testing.T) {
	c := NewAPIClient("http://localhost:3000")
	if got := c.LabelURL("pi_1"); got != "http://localhost:3000/order-status/pi_1/label.png" {
		t.Errorf("Unexpected label URL %s", got)
	}
}

func TestAPIClient_Label(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/order-status/pi_9/label.png" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		io.WriteString(w, "\x89PNG")
	}))
	defer srv.Close()

	data, err := NewAPIClient(srv.URL).Label(context.Background(), "pi_9")
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if string(data) != "\x89PNG" {
		t.Errorf("Expected raw body, got %q", data)
	}
}

func TestAPIClient_Catalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(catalog.Default())
	}))
	defer srv.Close()

	cat, err := NewAPIClient(srv.URL).Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if p, ok := cat.Product(catalog.Hoodie); !ok || p.Price != 3499 {
		t.Errorf("Expected hoodie at 3499, got %+v", p)
	}
}
