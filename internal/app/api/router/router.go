package router

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carts/internal/domain/cart"
	"carts/internal/messaging/cartevent"
	"carts/internal/observability/metrics"
	"carts/internal/routes"
)

// Dependencies enumerates services required by API handlers.
type Dependencies struct {
	ServiceName string
	CartService *cart.Service
	Publisher   *cartevent.Publisher
}

// route binds one declared endpoint to its handler. The pattern uses the
// "{param}" template form; it is converted to gin syntax at mount time and
// registered verbatim with the static route registry.
type route struct {
	method  string
	pattern string
	handler gin.HandlerFunc
}

// itemResource describes the item sub-resource; its endpoints are
// generated from the descriptor rather than declared one by one.
var itemResource = routes.Resource{
	Base:    "/carts/{customerID}/items",
	IDParam: "itemID",
}

// New builds a gin.Engine with all routes registered and the monitoring
// middleware wired to the same route registries the engine mounts from.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	h := &handler{svc: deps.CartService, publisher: deps.Publisher}

	static := routes.NewStaticSource()
	matcher := routes.NewMatcher(static, routes.NewResourceSource(itemResource))
	r.Use(gin.Logger(), gin.Recovery(), metrics.Middleware(deps.ServiceName, matcher))

	for _, rt := range h.declaredRoutes() {
		static.Register(rt.method, rt.pattern)
		r.Handle(rt.method, ginPath(rt.pattern), rt.handler)
	}
	for _, rt := range h.resourceRoutes(itemResource) {
		r.Handle(rt.method, ginPath(rt.pattern), rt.handler)
	}
	return r
}

// ginPath converts a "{param}" template to gin's ":param" syntax.
func ginPath(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			parts[i] = ":" + p[1:len(p)-1]
		}
	}
	return strings.Join(parts, "/")
}

type handler struct {
	svc       *cart.Service
	publisher *cartevent.Publisher
}

func (h *handler) declaredRoutes() []route {
	return []route{
		{http.MethodGet, "/health", h.health},
		{http.MethodGet, "/metrics", gin.WrapH(promhttp.Handler())},
		{http.MethodGet, "/carts/{customerID}", h.getCart},
		{http.MethodDelete, "/carts/{customerID}", h.deleteCart},
		{http.MethodGet, "/carts/{customerID}/merge", h.mergeCarts},
		{http.MethodGet, routes.ErrorPath, h.errorPage},
	}
}

// resourceRoutes mirrors the descriptor expansion in routes.ResourceSource.
func (h *handler) resourceRoutes(res routes.Resource) []route {
	element := res.Base + "/{" + res.IDParam + "}"
	return []route{
		{http.MethodGet, res.Base, h.listItems},
		{http.MethodPost, res.Base, h.addItem},
		{http.MethodGet, element, h.getItem},
		{http.MethodPut, element, h.updateItem},
		{http.MethodDelete, element, h.removeItem},
	}
}

type itemRequest struct {
	ItemID    string  `json:"itemId" binding:"required"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// updateItemRequest omits the item id; it comes from the path.
type updateItemRequest struct {
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unitPrice"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) errorPage(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func (h *handler) getCart(c *gin.Context) {
	cartData, err := h.svc.GetCart(c.Request.Context(), c.Param("customerID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cartData.Items == nil {
		cartData.Items = []cart.Item{}
	}
	c.JSON(http.StatusOK, cartData)
}

func (h *handler) deleteCart(c *gin.Context) {
	customerID := c.Param("customerID")
	if err := h.svc.DeleteCart(c.Request.Context(), customerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.publish(c, cart.ActivityEvent{CustomerID: customerID, Action: cart.ActionCartDeleted})
	c.Status(http.StatusAccepted)
}

func (h *handler) mergeCarts(c *gin.Context) {
	customerID := c.Param("customerID")
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId query parameter is required"})
		return
	}
	if err := h.svc.Merge(c.Request.Context(), sessionID, customerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish(c, cart.ActivityEvent{CustomerID: customerID, Action: cart.ActionCartsMerged})
	c.Status(http.StatusAccepted)
}

func (h *handler) listItems(c *gin.Context) {
	cartData, err := h.svc.GetCart(c.Request.Context(), c.Param("customerID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cartData.Items == nil {
		cartData.Items = []cart.Item{}
	}
	c.JSON(http.StatusOK, cartData.Items)
}

func (h *handler) addItem(c *gin.Context) {
	customerID := c.Param("customerID")
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	item := cart.Item{ItemID: req.ItemID, Quantity: req.Quantity, UnitPrice: req.UnitPrice}
	if err := h.svc.AddItem(c.Request.Context(), customerID, item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish(c, cart.ActivityEvent{
		CustomerID: customerID,
		Action:     cart.ActionItemAdded,
		ItemID:     item.ItemID,
		Quantity:   item.Quantity,
	})
	c.JSON(http.StatusCreated, item)
}

func (h *handler) getItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("customerID"), c.Param("itemID"))
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handler) updateItem(c *gin.Context) {
	customerID := c.Param("customerID")
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := cart.Item{ItemID: c.Param("itemID"), Quantity: req.Quantity, UnitPrice: req.UnitPrice}
	if err := h.svc.UpdateItem(c.Request.Context(), customerID, item); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish(c, cart.ActivityEvent{
		CustomerID: customerID,
		Action:     cart.ActionItemUpdated,
		ItemID:     item.ItemID,
		Quantity:   item.Quantity,
	})
	c.Status(http.StatusAccepted)
}

func (h *handler) removeItem(c *gin.Context) {
	customerID := c.Param("customerID")
	itemID := c.Param("itemID")
	if err := h.svc.RemoveItem(c.Request.Context(), customerID, itemID); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.publish(c, cart.ActivityEvent{CustomerID: customerID, Action: cart.ActionItemRemoved, ItemID: itemID})
	c.Status(http.StatusAccepted)
}

// publish sends the activity event best-effort; losing an audit event must
// not fail the user-facing request.
func (h *handler) publish(c *gin.Context, event cart.ActivityEvent) {
	event.Timestamp = time.Now().UTC()
	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		log.Printf("router: failed to publish %s event for customer=%s: %v", event.Action, event.CustomerID, err)
	}
}
