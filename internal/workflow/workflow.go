package workflow

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/a-manpathan/kata-frontend/internal/controller"
	"github.com/a-manpathan/kata-frontend/internal/domain"
	"github.com/a-manpathan/kata-frontend/internal/gateway"
	"github.com/a-manpathan/kata-frontend/internal/session"
)

// Workflows are the user-initiated operations: each validates its input
// locally, issues exactly one gateway call, and on success refreshes the view
// so the snapshot is never more than one round trip stale. Failures are
// returned to the caller for display; the snapshot is left untouched because
// nothing was mutated optimistically.
type Workflows struct {
	gw   gateway.Client
	view *controller.Controller
	sess *session.Store
	log  *logrus.Logger
}

func New(gw gateway.Client, view *controller.Controller, sess *session.Store, logger *logrus.Logger) *Workflows {
	return &Workflows{
		gw:   gw,
		view: view,
		sess: sess,
		log:  logger,
	}
}

// SaveSweet creates or updates depending on whether the draft targets an
// existing sweet. The draft's price is canonicalized through decimal so the
// backend never sees a malformed amount.
func (w *Workflows) SaveSweet(ctx context.Context, draft domain.SweetDraft) error {
	normalized, err := validateDraft(draft)
	if err != nil {
		w.log.Warnf("Workflow: Rejected sweet draft locally: %v", err)
		return err
	}

	if normalized.TargetID == nil {
		_, err = w.gw.CreateSweet(ctx, normalized)
	} else {
		_, err = w.gw.UpdateSweet(ctx, *normalized.TargetID, normalized)
	}
	if err != nil {
		w.log.Warnf("Workflow: Failed to save sweet %q: %v", normalized.Name, err)
		return err
	}

	w.view.Refresh(ctx)
	return nil
}

// DeleteSweet removes a sweet permanently. The confirmed flag is the explicit
// confirmation step: without it no request is issued.
func (w *Workflows) DeleteSweet(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrConfirmationRequired
	}
	if err := w.gw.DeleteSweet(ctx, id); err != nil {
		w.log.Warnf("Workflow: Failed to delete sweet %s: %v", id, err)
		return err
	}
	w.view.Refresh(ctx)
	return nil
}

// PurchaseSweet buys one unit. When the current snapshot already shows the
// sweet as sold out the call is refused locally; a sweet that sold out
// server-side since the last reload comes back as the same stock error.
func (w *Workflows) PurchaseSweet(ctx context.Context, id string) error {
	for _, sweet := range w.view.Snapshot().Sweets {
		if sweet.ID == id && !sweet.Purchasable() {
			w.log.Warnf("Workflow: Refused purchase of sold-out sweet %s without a call", id)
			return domain.ErrOutOfStock
		}
	}

	if err := w.gw.PurchaseSweet(ctx, id); err != nil {
		w.log.Warnf("Workflow: Purchase of sweet %s failed: %v", id, err)
		return err
	}
	w.view.Refresh(ctx)
	return nil
}

// RestockSweet adds stock. The amount arrives as the raw text the user typed;
// anything that is not a positive integer is rejected before any network call.
func (w *Workflows) RestockSweet(ctx context.Context, id string, rawAmount string) error {
	amount, err := strconv.Atoi(strings.TrimSpace(rawAmount))
	if err != nil {
		return domain.NewValidationError("amount", "restock amount must be a whole number")
	}
	if amount <= 0 {
		return domain.NewValidationError("amount", "restock amount must be positive")
	}

	if err := w.gw.RestockSweet(ctx, id, amount); err != nil {
		w.log.Warnf("Workflow: Restock of sweet %s by %d failed: %v", id, amount, err)
		return err
	}
	w.view.Refresh(ctx)
	return nil
}

// Login authenticates against the backend, installs the session, and loads
// the initial inventory view.
func (w *Workflows) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	result, err := w.gw.Login(ctx, email, password)
	if err != nil {
		w.log.Warnf("Workflow: Login failed for %s: %v", email, err)
		return domain.User{}, err
	}

	w.sess.Login(result.Token, result.User)
	w.view.Refresh(ctx)
	return result.User, nil
}

// Register creates an account. It does not log the new user in; the original
// flow returns to the login screen.
func (w *Workflows) Register(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !isValidEmail(email) {
		return domain.NewValidationError("email", "invalid email format")
	}
	if len(password) < 6 {
		return domain.NewValidationError("password", "password must be at least 6 characters")
	}

	if err := w.gw.Register(ctx, email, password); err != nil {
		w.log.Warnf("Workflow: Registration failed for %s: %v", email, err)
		return err
	}
	w.log.Infof("Workflow: Registered account for %s", email)
	return nil
}

// Logout clears the session; the controller drops its snapshot through its
// session subscription. No network traffic is involved.
func (w *Workflows) Logout() {
	w.sess.Logout()
}

func validateDraft(draft domain.SweetDraft) (domain.SweetDraft, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Category = strings.TrimSpace(draft.Category)

	if draft.Name == "" {
		return draft, domain.NewValidationError("name", "name cannot be empty")
	}
	if draft.Category == "" {
		return draft, domain.NewValidationError("category", "category cannot be empty")
	}

	// The price text is validated through decimal but kept verbatim: the
	// backend stores and displays it as written, so "2.50" must stay "2.50".
	draft.Price = strings.TrimSpace(draft.Price)
	price, err := decimal.NewFromString(draft.Price)
	if err != nil {
		return draft, domain.NewValidationError("price", "price must be a number")
	}
	if price.IsNegative() {
		return draft, domain.NewValidationError("price", "price cannot be negative")
	}

	if draft.Quantity < 0 {
		return draft, domain.NewValidationError("quantity", "quantity cannot be negative")
	}
	return draft, nil
}

func isValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.Contains(email[at+1:], ".")
}
