package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"genesis-admin/internal/domain"
	"genesis-admin/internal/domain/model"
	"genesis-admin/internal/usecase"
)

// ===== JSON plumbing =====

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrZeroCredits):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrTerminalStatus),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrPlanReferenced):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// ===== auth =====

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.auth.VerifyKey(req.APIKey, s.apiKey) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rejected admin login")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ===== stats =====

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stats.Totals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		TotalUsers            int         `json:"total_users"`
		ManualActivationUsers int         `json:"manual_activation_users"`
		Revenue               revenueView `json:"revenue_brl"`
	}{
		TotalUsers:            stats.TotalUsers,
		ManualActivationUsers: stats.ManualActivationUsers,
		Revenue:               newRevenueView(stats.Revenue),
	})
}

type revenueView struct {
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
	Year  decimal.Decimal `json:"year"`
}

func newRevenueView(r usecase.RevenueTotals) revenueView {
	return revenueView{Week: r.Week, Month: r.Month, Year: r.Year}
}

// ===== rates =====

func (s *Server) handleCurrentRate(w http.ResponseWriter, r *http.Request) {
	var override *decimal.Decimal
	if raw := r.URL.Query().Get("spread"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid spread")
			return
		}
		override = &d
	}
	sample := s.rates.GetRate(r.Context(), override)
	writeJSON(w, http.StatusOK, sample)
}

// ===== plans =====

type planView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Credits        int64           `json:"credits"`
	PriceUSD       decimal.Decimal `json:"price_usd"`
	PricePerCredit decimal.Decimal `json:"price_per_credit"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newPlanView(p *model.CreditPlan) planView {
	ppc, _ := p.PricePerCredit()
	return planView{
		ID:             p.ID,
		Name:           p.Name,
		Credits:        p.Credits,
		PriceUSD:       p.PriceUSD,
		PricePerCredit: ppc,
		CreatedAt:      p.CreatedAt,
	}
}

func (s *Server) handlePlanList(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanView(p))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []planView `json:"data"`
	}{Data: out})
}

type planCreateRequest struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Credits  int64           `json:"credits"`
	PriceUSD decimal.Decimal `json:"price_usd"`
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plan, err := s.plans.Create(r.Context(), req.ID, req.Name, req.Credits, req.PriceUSD)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPlanView(plan))
}

func (s *Server) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	plan, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanView(plan))
}

type planUpdateRequest struct {
	Name     *string          `json:"name"`
	Credits  *int64           `json:"credits"`
	PriceUSD *decimal.Decimal `json:"price_usd"`
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	var req planUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plan, err := s.plans.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Credits, req.PriceUSD)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlanView(plan))
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== users =====

type subscriptionView struct {
	ActivationMode        model.ActivationMode `json:"activation_mode"`
	LastlinkStatus        model.LastlinkStatus `json:"lastlink_status"`
	ManualActivationStart *time.Time           `json:"manual_activation_start,omitempty"`
	ManualActivationEnd   *time.Time           `json:"manual_activation_end,omitempty"`
}

type userView struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Credits       int64            `json:"credits"`
	Analyses      int64            `json:"analyses"`
	Searches      int64            `json:"searches"`
	Status        model.UserStatus `json:"status"`
	JoinedAt      time.Time        `json:"joined_at"`
	TermsSignedAt *time.Time       `json:"terms_signed_at,omitempty"`
	Subscription  subscriptionView `json:"subscription"`
}

func newUserView(u *model.User) userView {
	return userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Credits:       u.Credits,
		Analyses:      u.Analyses,
		Searches:      u.Searches,
		Status:        u.Status,
		JoinedAt:      u.JoinedAt,
		TermsSignedAt: u.TermsSignedAt,
		Subscription: subscriptionView{
			ActivationMode:        u.Subscription.ActivationMode,
			LastlinkStatus:        u.Subscription.LastlinkStatus,
			ManualActivationStart: u.Subscription.ManualActivationStart,
			ManualActivationEnd:   u.Subscription.ManualActivationEnd,
		},
	}
}

type accessView struct {
	Active         bool                 `json:"active"`
	Mode           model.ActivationMode `json:"mode"`
	LastlinkStatus model.LastlinkStatus `json:"lastlink_status"`
	RemainingDays  int                  `json:"remaining_days"`
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.activation.ListUsers(r.Context(), offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	total, err := s.activation.CountUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	writeJSON(w, http.StatusOK, struct {
		Data   []userView `json:"data"`
		Total  int        `json:"total"`
		Limit  int        `json:"limit"`
		Offset int        `json:"offset"`
	}{Data: out, Total: total, Limit: limit, Offset: offset})
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := s.activation.GetUser(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	state, err := s.activation.Resolve(r.Context(), id, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		User   userView   `json:"user"`
		Access accessView `json:"access"`
	}{
		User: newUserView(user),
		Access: accessView{
			Active:         state.Active,
			Mode:           state.Mode,
			LastlinkStatus: state.LastlinkStatus,
			RemainingDays:  state.RemainingDays,
		},
	})
}

type grantManualRequest struct {
	Days int `json:"days"`
}

func (s *Server) handleGrantManual(w http.ResponseWriter, r *http.Request) {
	var req grantManualRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.activation.GrantManual(r.Context(), chi.URLParam(r, "id"), req.Days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleRevertActivation(w http.ResponseWriter, r *http.Request) {
	user, err := s.activation.RevertToLastlink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

type addCreditsRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req addCreditsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.activation.AddCredits(r.Context(), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	user, err := s.activation.ToggleStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

// ===== transactions =====

type transactionView struct {
	ID             string              `json:"id"`
	UserID         string              `json:"user_id"`
	PlanID         string              `json:"plan_id"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	Status         model.PaymentStatus `json:"status"`
	PaymentMethod  model.PaymentMethod `json:"payment_method"`
	CreatedAt      time.Time           `json:"created_at"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
	AsaasPaymentID string              `json:"asaas_payment_id,omitempty"`
}

func newTransactionView(t *model.PaymentTransaction) transactionView {
	return transactionView{
		ID:             t.ID,
		UserID:         t.UserID,
		PlanID:         t.PlanID,
		Amount:         t.Amount,
		Currency:       t.Currency,
		Status:         t.Status,
		PaymentMethod:  t.PaymentMethod,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
		AsaasPaymentID: t.AsaasPaymentID,
	}
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	var (
		txns []*model.PaymentTransaction
		err  error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		txns, err = s.ledger.ListByUser(r.Context(), userID)
	} else {
		txns, err = s.ledger.ListAll(r.Context())
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		out = append(out, newTransactionView(t))
	}
	writeJSON(w, http.StatusOK, struct {
		Data []transactionView `json:"data"`
	}{Data: out})
}

type transactionCreateRequest struct {
	UserID string              `json:"user_id"`
	PlanID string              `json:"plan_id"`
	Amount decimal.Decimal     `json:"amount"`
	Method model.PaymentMethod `json:"method"`
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	txn, err := s.ledger.Create(r.Context(), req.UserID, req.PlanID, req.Amount, req.Method)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionView(txn))
}

func (s *Server) handleTransactionGet(w http.ResponseWriter, r *http.Request) {
	txn, err := s.ledger.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionView(txn))
}

type transactionStatusRequest struct {
	Status model.PaymentStatus `json:"status"`
}

func (s *Server) handleTransactionStatus(w http.ResponseWriter, r *http.Request) {
	var req transactionStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	txn, err := s.ledger.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionView(txn))
}

// ===== settings =====

type checkoutConfigView struct {
	PixEnabled        bool            `json:"pix_enabled"`
	CreditCardEnabled bool            `json:"credit_card_enabled"`
	BoletoEnabled     bool            `json:"boleto_enabled"`
	PixFee            decimal.Decimal `json:"pix_fee"`
	CreditCardFee     decimal.Decimal `json:"credit_card_fee"`
	BoletoFee         decimal.Decimal `json:"boleto_fee"`
	FixedFee          decimal.Decimal `json:"fixed_fee"`
	UsdToBrlRate      decimal.Decimal `json:"usd_brl_rate"`
	CheckoutSpread    decimal.Decimal `json:"checkout_spread"`
	WebhookSecretSet  bool            `json:"webhook_secret_set"`
}

func newCheckoutConfigView(c *model.CheckoutConfig) checkoutConfigView {
	return checkoutConfigView{
		PixEnabled:        c.PixEnabled,
		CreditCardEnabled: c.CreditCardEnabled,
		BoletoEnabled:     c.BoletoEnabled,
		PixFee:            c.PixFee,
		CreditCardFee:     c.CreditCardFee,
		BoletoFee:         c.BoletoFee,
		FixedFee:          c.FixedFee,
		UsdToBrlRate:      c.UsdToBrlRate,
		CheckoutSpread:    c.CheckoutSpread,
		WebhookSecretSet:  c.WebhookSecret != "",
	}
}

func (s *Server) handleCheckoutConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.GetCheckoutConfig(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutConfigView(cfg))
}

type checkoutConfigUpdateRequest struct {
	PixEnabled        *bool            `json:"pix_enabled"`
	CreditCardEnabled *bool            `json:"credit_card_enabled"`
	BoletoEnabled     *bool            `json:"boleto_enabled"`
	PixFee            *decimal.Decimal `json:"pix_fee"`
	CreditCardFee     *decimal.Decimal `json:"credit_card_fee"`
	BoletoFee         *decimal.Decimal `json:"boleto_fee"`
	FixedFee          *decimal.Decimal `json:"fixed_fee"`
	UsdToBrlRate      *decimal.Decimal `json:"usd_brl_rate"`
	CheckoutSpread    *decimal.Decimal `json:"checkout_spread"`
	WebhookSecret     *string          `json:"webhook_secret"`
}

func (s *Server) handleCheckoutConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req checkoutConfigUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := s.settings.UpdateCheckoutConfig(r.Context(), usecase.CheckoutConfigUpdate{
		PixEnabled:        req.PixEnabled,
		CreditCardEnabled: req.CreditCardEnabled,
		BoletoEnabled:     req.BoletoEnabled,
		PixFee:            req.PixFee,
		CreditCardFee:     req.CreditCardFee,
		BoletoFee:         req.BoletoFee,
		FixedFee:          req.FixedFee,
		UsdToBrlRate:      req.UsdToBrlRate,
		CheckoutSpread:    req.CheckoutSpread,
		WebhookSecret:     req.WebhookSecret,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutConfigView(cfg))
}

type asaasConfigPayload struct {
	APIKey      string `json:"api_key"`
	WebhookURL  string `json:"webhook_url"`
	Environment string `json:"environment"`
	CpfCnpj     string `json:"cpf_cnpj"`
	AccountName string `json:"account_name"`
}

func (s *Server) handleAsaasConfigGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.settings.GetAsaasConfig(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asaasConfigPayload{
		APIKey:      maskKey(cfg.APIKey),
		WebhookURL:  cfg.WebhookURL,
		Environment: cfg.Environment,
		CpfCnpj:     cfg.CpfCnpj,
		AccountName: cfg.AccountName,
	})
}

// maskKey hides all but the last four characters of a credential.
func maskKey(key string) string {
	if len(key) <= 4 {
		return key
	}
	return "****" + key[len(key)-4:]
}

func (s *Server) handleAsaasConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var req asaasConfigPayload
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := s.settings.UpdateAsaasConfig(r.Context(), &model.AsaasConfig{
		APIKey:      req.APIKey,
		WebhookURL:  req.WebhookURL,
		Environment: req.Environment,
		CpfCnpj:     req.CpfCnpj,
		AccountName: req.AccountName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asaasConfigPayload{
		APIKey:      maskKey(cfg.APIKey),
		WebhookURL:  cfg.WebhookURL,
		Environment: cfg.Environment,
		CpfCnpj:     cfg.CpfCnpj,
		AccountName: cfg.AccountName,
	})
}

func (s *Server) handleAsaasTest(w http.ResponseWriter, r *http.Request) {
	result, err := s.settings.TestAsaasConnection(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{Success: result.Success, Message: result.Message})
}

// ===== checkout =====

type previewRequest struct {
	PlanID string              `json:"plan_id"`
	Method model.PaymentMethod `json:"method"`
	Spread *decimal.Decimal    `json:"spread"`
}

func (s *Server) handleCheckoutPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	preview, err := s.checkout.Preview(r.Context(), req.PlanID, req.Method, req.Spread)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Plan           planView                 `json:"plan"`
		PricePerCredit decimal.Decimal          `json:"price_per_credit"`
		Rate           model.ExchangeRateSample `json:"rate"`
		PriceBRL       decimal.Decimal          `json:"price_brl"`
		Fee            decimal.Decimal          `json:"fee"`
		Total          decimal.Decimal          `json:"total"`
	}{
		Plan:           newPlanView(preview.Plan),
		PricePerCredit: preview.PricePerCredit,
		Rate:           preview.Rate,
		PriceBRL:       preview.PriceBRL,
		Fee:            preview.Fee,
		Total:          preview.Total,
	})
}

type feeQuoteRequest struct {
	Amount decimal.Decimal     `json:"amount"`
	Method model.PaymentMethod `json:"method"`
}

func (s *Server) handleFeeQuote(w http.ResponseWriter, r *http.Request) {
	var req feeQuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	quote, err := s.checkout.QuoteFee(r.Context(), req.Amount, req.Method)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Amount decimal.Decimal `json:"amount"`
		Fee    decimal.Decimal `json:"fee"`
		Total  decimal.Decimal `json:"total"`
	}{Amount: req.Amount, Fee: quote.Fee, Total: quote.Total})
}

// ===== lastlink =====

func (s *Server) handleLastlinkSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.activation.SyncLastlink(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		SyncedUsers          int       `json:"synced_users"`
		UpdatedSubscriptions int       `json:"updated_subscriptions"`
		Timestamp            time.Time `json:"timestamp"`
	}{
		SyncedUsers:          report.SyncedUsers,
		UpdatedSubscriptions: report.UpdatedSubscriptions,
		Timestamp:            report.Timestamp,
	})
}

// ===== webhooks =====

type asaasWebhookPayload struct {
	Event   string `json:"event"`
	Payment struct {
		ID string `json:"id"`
	} `json:"payment"`
}

// webhookStatus maps Asaas payment events onto ledger statuses. Events that
// carry no status meaning return "".
func webhookStatus(event string) model.PaymentStatus {
	switch event {
	case "PAYMENT_CONFIRMED", "PAYMENT_RECEIVED":
		return model.PaymentStatusCompleted
	case "PAYMENT_AWAITING_RISK_ANALYSIS", "PAYMENT_UPDATED":
		return model.PaymentStatusProcessing
	case "PAYMENT_OVERDUE":
		return model.PaymentStatusFailed
	case "PAYMENT_DELETED", "PAYMENT_REFUNDED":
		return model.PaymentStatusCancelled
	}
	return ""
}

func (s *Server) handleAsaasWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	ok, err := s.settings.ValidateWebhook(r.Context(), r.Header.Get("X-Webhook-Signature"), body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload asaasWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	status := webhookStatus(payload.Event)
	if status == "" || payload.Payment.ID == "" {
		writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
		return
	}

	txn, err := s.ledger.GetByAsaasID(r.Context(), payload.Payment.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Not our payment; acknowledge so the provider stops retrying.
			s.log.Warn().Str("asaas_id", payload.Payment.ID).Msg("webhook for unknown payment")
			writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
			return
		}
		writeDomainError(w, err)
		return
	}

	if _, err := s.ledger.UpdateStatus(r.Context(), txn.ID, status); err != nil {
		// Redeliveries of settled events are expected and harmless.
		if errors.Is(err, domain.ErrTerminalStatus) || errors.Is(err, domain.ErrInvalidStatus) {
			writeJSON(w, http.StatusOK, map[string]bool{"ignored": true})
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"processed": true})
}
