package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Discount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/discounted-price/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"discountPercentage": 12.5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	d, err := c.Discount(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 12.5, d)
}

func TestClient_Discount_EscapesProductID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/discounted-price/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{"discountPercentage": 0}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Discount(context.Background(), "a/b")
	require.NoError(t, err)
}

func TestClient_Discount_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Discount(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestClient_Discount_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Discount(context.Background(), "p1")
	require.Error(t, err)
}

func TestClient_Discount_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Discount(ctx, "p1")
	require.Error(t, err)
}
