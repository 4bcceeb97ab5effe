package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/internal/capability"
	"github.com/a-manpathan/kata-frontend/internal/controller"
	"github.com/a-manpathan/kata-frontend/internal/domain"
	"github.com/a-manpathan/kata-frontend/internal/session"
	"github.com/a-manpathan/kata-frontend/internal/workflow"
)

// Handler exposes the session core to the browser page as local JSON
// endpoints. It performs no business logic of its own: everything delegates to
// the workflows and the view controller.
type Handler struct {
	flows *workflow.Workflows
	view  *controller.Controller
	sess  *session.Store
	log   *logrus.Logger
}

func NewHandler(flows *workflow.Workflows, view *controller.Controller, sess *session.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		flows: flows,
		view:  view,
		sess:  sess,
		log:   logger,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	sessionGroup := router.Group("/session")
	{
		sessionGroup.POST("/login", h.Login)
		sessionGroup.POST("/register", h.Register)
		sessionGroup.POST("/logout", h.Logout)
		sessionGroup.GET("", h.CurrentSession)
	}

	viewGroup := router.Group("/view")
	{
		viewGroup.GET("", h.GetView)
		viewGroup.PUT("/search", h.SetSearch)
		viewGroup.POST("/refresh", h.Refresh)
	}

	sweets := router.Group("/sweets")
	{
		sweets.POST("", h.requirePrivileged, h.CreateSweet)
		sweets.PUT("/:id", h.requirePrivileged, h.UpdateSweet)
		sweets.DELETE("/:id", h.requirePrivileged, h.DeleteSweet)
		sweets.POST("/:id/purchase", h.PurchaseSweet)
		sweets.POST("/:id/restock", h.requirePrivileged, h.RestockSweet)
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type draftRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type restockRequest struct {
	Amount string `json:"amount"`
}

// sweetView is a snapshot item annotated with what the page needs to render
// the stock label and the purchase button state.
type sweetView struct {
	domain.Sweet
	StockStatus domain.StockStatus `json:"stock_status"`
	CanPurchase bool               `json:"can_purchase"`
}

type viewResponse struct {
	State       controller.ViewState   `json:"state"`
	Term        string                 `json:"term"`
	LoadError   string                 `json:"load_error,omitempty"`
	Sweets      []sweetView            `json:"sweets"`
	Affordances capability.Affordances `json:"affordances"`
}

// requirePrivileged hides gated operations from unprivileged callers. This is
// UI courtesy only; the backend rejects unauthorized requests regardless of
// what this layer lets through.
func (h *Handler) requirePrivileged(c *gin.Context) {
	user, ok := h.sess.Current()
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		c.Abort()
		return
	}
	if !capability.IsPrivileged(user) {
		h.log.Warnf("Delivery: Blocked gated operation for non-admin %s", user.Email)
		ErrorResponse(c, http.StatusForbidden, domain.ErrForbidden.Error())
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.flows.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Logged in", user)
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.flows.Register(c.Request.Context(), req.Email, req.Password); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Account registered", nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.flows.Logout()
	SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

func (h *Handler) CurrentSession(c *gin.Context) {
	user, ok := h.sess.Current()
	if !ok {
		SuccessResponse(c, http.StatusOK, "No active session", gin.H{"authenticated": false})
		return
	}
	SuccessResponse(c, http.StatusOK, "Active session", gin.H{
		"authenticated": true,
		"user":          user,
		"privileged":    capability.IsPrivileged(user),
	})
}

func (h *Handler) GetView(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Current view", h.renderView())
}

func (h *Handler) SetSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	h.view.SetSearch(c.Request.Context(), req.Term)
	SuccessResponse(c, http.StatusOK, "Search applied", h.renderView())
}

func (h *Handler) Refresh(c *gin.Context) {
	h.view.Refresh(c.Request.Context())
	SuccessResponse(c, http.StatusOK, "View refreshed", h.renderView())
}

func (h *Handler) CreateSweet(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	draft := domain.SweetDraft{Name: req.Name, Category: req.Category, Price: req.Price, Quantity: req.Quantity}
	if err := h.flows.SaveSweet(c.Request.Context(), draft); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to save sweet: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Sweet created", h.renderView())
}

func (h *Handler) UpdateSweet(c *gin.Context) {
	id := c.Param("id")
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	draft := domain.SweetDraft{TargetID: &id, Name: req.Name, Category: req.Category, Price: req.Price, Quantity: req.Quantity}
	if err := h.flows.SaveSweet(c.Request.Context(), draft); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to save sweet: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sweet updated", h.renderView())
}

func (h *Handler) DeleteSweet(c *gin.Context) {
	id := c.Param("id")
	confirmed := c.Query("confirm") == "true"

	if err := h.flows.DeleteSweet(c.Request.Context(), id, confirmed); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete sweet: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sweet deleted", h.renderView())
}

func (h *Handler) PurchaseSweet(c *gin.Context) {
	id := c.Param("id")
	if err := h.flows.PurchaseSweet(c.Request.Context(), id); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sweet purchased", h.renderView())
}

func (h *Handler) RestockSweet(c *gin.Context) {
	id := c.Param("id")
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.flows.RestockSweet(c.Request.Context(), id, req.Amount); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to restock sweet: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sweet restocked", h.renderView())
}

func (h *Handler) renderView() viewResponse {
	snapshot := h.view.Snapshot()
	user, authenticated := h.sess.Current()

	sweets := make([]sweetView, 0, len(snapshot.Sweets))
	for _, sweet := range snapshot.Sweets {
		sweets = append(sweets, sweetView{
			Sweet:       sweet,
			StockStatus: domain.StockStatusOf(sweet.Quantity),
			CanPurchase: sweet.Purchasable(),
		})
	}

	return viewResponse{
		State:       snapshot.State,
		Term:        snapshot.Term,
		LoadError:   snapshot.LoadErr,
		Sweets:      sweets,
		Affordances: capability.For(user, authenticated),
	}
}
