package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carts/internal/domain/cart"
	"carts/internal/messaging/cartevent"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	items map[string][]cart.Item
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string][]cart.Item)}
}

func (m *memStore) ListItems(_ context.Context, customerID string) ([]cart.Item, error) {
	return m.items[customerID], nil
}

func (m *memStore) GetItem(_ context.Context, customerID, itemID string) (cart.Item, error) {
	for _, it := range m.items[customerID] {
		if it.ItemID == itemID {
			return it, nil
		}
	}
	return cart.Item{}, cart.ErrItemNotFound
}

func (m *memStore) AddItem(_ context.Context, customerID string, item cart.Item) error {
	for i, it := range m.items[customerID] {
		if it.ItemID == item.ItemID {
			m.items[customerID][i].Quantity += item.Quantity
			return nil
		}
	}
	m.items[customerID] = append(m.items[customerID], item)
	return nil
}

func (m *memStore) ReplaceItem(_ context.Context, customerID string, item cart.Item) error {
	for i, it := range m.items[customerID] {
		if it.ItemID == item.ItemID {
			m.items[customerID][i] = item
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (m *memStore) RemoveItem(_ context.Context, customerID, itemID string) error {
	for i, it := range m.items[customerID] {
		if it.ItemID == itemID {
			m.items[customerID] = append(m.items[customerID][:i], m.items[customerID][i+1:]...)
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (m *memStore) DeleteCart(_ context.Context, customerID string) error {
	delete(m.items, customerID)
	return nil
}

func (m *memStore) MergeCarts(_ context.Context, sessionID, customerID string) error {
	for _, it := range m.items[sessionID] {
		_ = m.AddItem(context.Background(), customerID, it)
	}
	delete(m.items, sessionID)
	return nil
}

type noopCache struct{}

func (noopCache) GetCart(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopCache) SetCart(context.Context, string, []byte) error         { return nil }
func (noopCache) InvalidateCart(context.Context, string) error          { return nil }

type recordingSender struct {
	events []cart.ActivityEvent
}

func (s *recordingSender) Send(_ context.Context, _ string, payload []byte) error {
	var event cart.ActivityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return err
	}
	s.events = append(s.events, event)
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memStore, *recordingSender) {
	t.Helper()
	store := newMemStore()
	sender := &recordingSender{}
	r := New(Dependencies{
		ServiceName: "carts-router-test",
		CartService: cart.NewService(store, noopCache{}),
		Publisher:   cartevent.NewPublisher(sender),
	})
	return r, store, sender
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCartReturnsEmptyCart(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/carts/42", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got cart.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "42", got.CustomerID)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestAddAndListItems(t *testing.T) {
	r, _, sender := newTestRouter(t)

	w := do(r, http.MethodPost, "/carts/42/items", `{"itemId":"sku-1","quantity":2,"unitPrice":9.99}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/carts/42/items", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []cart.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "sku-1", items[0].ItemID)
	assert.Equal(t, 2, items[0].Quantity)

	require.Len(t, sender.events, 1)
	assert.Equal(t, cart.ActionItemAdded, sender.events[0].Action)
	assert.Equal(t, "42", sender.events[0].CustomerID)
}

func TestAddItemDefaultsQuantity(t *testing.T) {
	r, store, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/carts/42/items", `{"itemId":"sku-1","unitPrice":3.50}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.items["42"], 1)
	assert.Equal(t, 1, store.items["42"][0].Quantity)
}

func TestAddItemRequiresItemID(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/carts/42/items", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateItem(t *testing.T) {
	r, store, sender := newTestRouter(t)
	store.items["42"] = []cart.Item{{ItemID: "sku-1", Quantity: 1, UnitPrice: 2}}

	w := do(r, http.MethodPut, "/carts/42/items/sku-1", `{"quantity":5,"unitPrice":2}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 5, store.items["42"][0].Quantity)

	require.Len(t, sender.events, 1)
	assert.Equal(t, cart.ActionItemUpdated, sender.events[0].Action)
}

func TestUpdateMissingItemReturns404(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodPut, "/carts/42/items/ghost", `{"quantity":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveItem(t *testing.T) {
	r, store, sender := newTestRouter(t)
	store.items["42"] = []cart.Item{{ItemID: "sku-1", Quantity: 1, UnitPrice: 2}}

	w := do(r, http.MethodDelete, "/carts/42/items/sku-1", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, store.items["42"])

	require.Len(t, sender.events, 1)
	assert.Equal(t, cart.ActionItemRemoved, sender.events[0].Action)
	assert.Equal(t, "sku-1", sender.events[0].ItemID)
}

func TestDeleteCart(t *testing.T) {
	r, store, sender := newTestRouter(t)
	store.items["42"] = []cart.Item{{ItemID: "sku-1", Quantity: 1, UnitPrice: 2}}

	w := do(r, http.MethodDelete, "/carts/42", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.NotContains(t, store.items, "42")

	require.Len(t, sender.events, 1)
	assert.Equal(t, cart.ActionCartDeleted, sender.events[0].Action)
}

func TestMergeCarts(t *testing.T) {
	r, store, sender := newTestRouter(t)
	store.items["sess-1"] = []cart.Item{{ItemID: "sku-1", Quantity: 1, UnitPrice: 2}}

	w := do(r, http.MethodGet, "/carts/42/merge?sessionId=sess-1", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, store.items["42"], 1)
	assert.NotContains(t, store.items, "sess-1")

	require.Len(t, sender.events, 1)
	assert.Equal(t, cart.ActionCartsMerged, sender.events[0].Action)
}

func TestMergeRequiresSessionID(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/carts/42/merge", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/error", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGinPathConversion(t *testing.T) {
	assert.Equal(t, "/carts/:customerID/items/:itemID", ginPath("/carts/{customerID}/items/{itemID}"))
	assert.Equal(t, "/health", ginPath("/health"))
}
