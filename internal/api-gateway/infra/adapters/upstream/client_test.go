package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL:  srv.URL + "/v1/api_public/",
		APIKey:   "key-123",
		Username: "shop",
		Password: "secret",
	})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{APIKey: "k", Username: "u", Password: "p"})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "https://example.com", Username: "u", Password: "p"})
	assert.Error(t, err)
}

func TestFetchItem_SendsCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api_public/item/42", r.URL.Path)
		assert.Equal(t, "key-123", r.URL.Query().Get("X-KEYALI-API"))
		assert.Equal(t, DefaultUserAgent, r.UserAgent())

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"item":{"id":42,"name":"Mug","price":"12.50","image_url":"https://img/mug.png","description":"Ceramic"}}}`))
	})

	item, err := c.FetchItem(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, &entity.Item{
		ID:          "42",
		Name:        "Mug",
		Price:       12.5,
		ImageURL:    "https://img/mug.png",
		Description: "Ceramic",
	}, item)
}

func TestFetchItem_EscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api_public/item/a%2Fb", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"response":{"item":{"id":"a/b","name":"X","price":1}}}`))
	})

	item, err := c.FetchItem(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", item.ID)
}

func TestFetchItem_UpstreamErrorKeepsPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"item does not exist"}`))
	})

	_, err := c.FetchItem(context.Background(), "missing")
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.StatusCode)
	assert.JSONEq(t, `{"error":"item does not exist"}`, string(upErr.Payload))
	assert.Equal(t, upErr.Payload, upErr.Details())
}

func TestFetchItem_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.FetchItem(context.Background(), "1")
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Nil(t, upErr.Payload)
	assert.Equal(t, "Bad Gateway", upErr.Details())
}

func TestFetchItem_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{}}`))
	})

	_, err := c.FetchItem(context.Background(), "1")
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Contains(t, upErr.Message, "missing item")
}

func TestFetchItem_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "k", Username: "u", Password: "p"})
	require.NoError(t, err)

	_, err = c.FetchItem(context.Background(), "1")
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Zero(t, upErr.StatusCode)
	assert.NotEmpty(t, upErr.Message)
}

func TestFetchItem_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchItem(ctx, "1")
	var upErr *entity.UpstreamError
	assert.True(t, errors.As(err, &upErr))
}

func TestFetchItems_DefaultLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api_public/items", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{
				"items": []map[string]any{
					{"id": "1", "name": "A", "price": 1.5},
					{"id": 2, "name": "B", "price": 3},
				},
			},
		})
	})

	items, err := c.FetchItems(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, 3.0, items[1].Price)
}

func TestFetchItems_ExplicitLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"response":{"items":[]}}`))
	})

	items, err := c.FetchItems(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFetchItems_MissingItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"item":{}}}`))
	})

	_, err := c.FetchItems(context.Background(), 5)
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
}

func TestFetchItem_NonFinitePrice(t *testing.T) {
	for _, price := range []string{`"NaN"`, `"Inf"`, `"-Infinity"`} {
		t.Run(price, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"response":{"item":{"id":"1","name":"Mug","price":` + price + `}}}`))
			})

			item, err := c.FetchItem(context.Background(), "1")
			assert.Nil(t, item)
			var upErr *entity.UpstreamError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, http.StatusOK, upErr.StatusCode)
			assert.Contains(t, upErr.Message, "malformed response")
		})
	}
}

func TestFetchItems_NonFinitePrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"items":[{"id":"1","price":10},{"id":"2","price":"NaN"}]}}`))
	})

	items, err := c.FetchItems(context.Background(), 0)
	assert.Nil(t, items)
	var upErr *entity.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Contains(t, upErr.Message, "malformed response")
}

func TestFlexFloat(t *testing.T) {
	var f flexFloat
	require.NoError(t, json.Unmarshal([]byte(`"12.50"`), &f))
	assert.Equal(t, flexFloat(12.5), f)
	require.NoError(t, json.Unmarshal([]byte(`7`), &f))
	assert.Equal(t, flexFloat(7), f)

	assert.Error(t, json.Unmarshal([]byte(`"NaN"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`"+Inf"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &f))
}
