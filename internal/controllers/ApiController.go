package controllers

import (
	"citystate/internal/access"
	"citystate/internal/models"
	"citystate/internal/providers"
	"citystate/internal/services"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	maxRequestBodySize  = 1 << 20  // 1 MB
	maxCreativeBodySize = 16 << 20 // data URIs of images and short clips
	defaultBoardSize    = 10
)

type ApiController struct {
	logger    providers.Logger
	accounts  services.AccountServiceInterface
	scene     services.SceneServiceInterface
	analytics services.AnalyticsServiceInterface
	metrics   services.MetricsViewInterface
	audit     services.AuditServiceInterface
	guard     *services.Guard
}

func NewApiController(logger providers.Logger, accounts services.AccountServiceInterface, scene services.SceneServiceInterface,
	analytics services.AnalyticsServiceInterface, metrics services.MetricsViewInterface, audit services.AuditServiceInterface, guard *services.Guard) *ApiController {
	return &ApiController{
		logger:    logger,
		accounts:  accounts,
		scene:     scene,
		analytics: analytics,
		metrics:   metrics,
		audit:     audit,
		guard:     guard,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type flagRequest struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type rentRequest struct {
	ID    string       `json:"id"`
	Brand models.Brand `json:"brand"`
}

type creativeRequest struct {
	ID      string `json:"id"`
	DataURI string `json:"dataUri"`
}

type roleRequest struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type blockRequest struct {
	Email   string `json:"email"`
	Blocked bool   `json:"blocked"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type capabilitiesResponse struct {
	Viewer       viewerResponse      `json:"viewer"`
	Capabilities access.Capabilities `json:"capabilities"`
}

type viewerResponse struct {
	Email       string             `json:"email,omitempty"`
	Role        models.Role        `json:"role"`
	AccountType models.AccountType `json:"accountType"`
	OrgContext  *models.OrgContext `json:"orgContext,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidCreative):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateEmail), errors.Is(err, services.ErrPlacementTaken):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError renders err as a transient notice for the page.
func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	switch status {
	case http.StatusForbidden:
		ac.logger.Warnf(providers.TypeAccess, "%s %s denied: %s", r.Method, r.URL.Path, err)
	case http.StatusInternalServerError:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s failed: %s", r.Method, r.URL.Path, err)
		writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return false
	}
	return true
}

func (ac *ApiController) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	sess, err := ac.accounts.Signup(in)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (ac *ApiController) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	sess, err := ac.accounts.Login(in.Email, in.Password)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (ac *ApiController) Guest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.accounts.Guest())
}

func (ac *ApiController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.accounts.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Capabilities is recomputed on every call from the current session and flags.
func (ac *ApiController) Capabilities(w http.ResponseWriter, r *http.Request) {
	v := ac.accounts.Viewer()
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		Viewer:       viewerResponse{Email: v.Email, Role: v.Role, AccountType: v.AccountType, OrgContext: v.OrgContext},
		Capabilities: access.Resolve(v, ac.scene.Flags()),
	})
}

func (ac *ApiController) GetFlags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.scene.Flags())
}

func (ac *ApiController) SetFlag(w http.ResponseWriter, r *http.Request) {
	var in flagRequest
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	flags, err := ac.scene.SetFlag(ac.accounts.Viewer(), in.Name, in.Value)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

// ReceiveEvent appends one analytics event. Signed-in viewers are attributed
// and earn a point per click.
func (ac *ApiController) ReceiveEvent(w http.ResponseWriter, r *http.Request) {
	var ev models.AnalyticsEvent
	if !decode(w, r, maxRequestBodySize, &ev) {
		return
	}
	switch ev.Type {
	case models.EventImpression, models.EventClick, models.EventDwell:
	default:
		ac.writeError(w, r, services.ErrInvalidInput)
		return
	}

	v := ac.accounts.Viewer()
	if !v.IsGuest() && ev.ViewerID() == "" {
		ev.Payload["viewerId"] = v.Email
	}
	recorded := ac.analytics.Record(ev.Type, ev.Payload)
	if ev.Type == models.EventClick && !v.IsGuest() {
		if err := ac.accounts.AwardPoints(v.Email, 1); err != nil {
			ac.logger.Debugf(providers.TypePost, "No points for %s: %s", v.Email, err)
		}
	}
	writeJSON(w, http.StatusCreated, recorded)
}

func (ac *ApiController) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	v := ac.accounts.Viewer()
	writeJSON(w, http.StatusOK, ac.guard.Render("campaigns", v.Email, func() (any, error) {
		data, err := ac.metrics.CampaignsJSON(v)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	}))
}

func (ac *ApiController) ListPlacements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.scene.Placements())
}

func (ac *ApiController) GetPlacement(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		ac.writeError(w, r, services.ErrInvalidInput)
		return
	}
	v := ac.accounts.Viewer()
	writeJSON(w, http.StatusOK, ac.guard.Render("brand", v.Email, func() (any, error) {
		return ac.metrics.PlacementMetrics(id, v), nil
	}))
}

func (ac *ApiController) UpsertPlacement(w http.ResponseWriter, r *http.Request) {
	var p models.Placement
	if !decode(w, r, maxRequestBodySize, &p) {
		return
	}
	saved, err := ac.scene.UpsertPlacement(ac.accounts.Viewer(), p)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (ac *ApiController) RentPlacement(w http.ResponseWriter, r *http.Request) {
	var in rentRequest
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	p, err := ac.scene.RentPlacement(ac.accounts.Viewer(), in.ID, in.Brand)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (ac *ApiController) UploadCreative(w http.ResponseWriter, r *http.Request) {
	var in creativeRequest
	if !decode(w, r, maxCreativeBodySize, &in) {
		return
	}
	if err := ac.scene.SetCreative(ac.accounts.Viewer(), in.ID, in.DataURI); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := ac.accounts.Users(ac.accounts.Viewer())
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (ac *ApiController) SetRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	if err := ac.accounts.SetRole(ac.accounts.Viewer(), in.Email, in.Role); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) SetBlocked(w http.ResponseWriter, r *http.Request) {
	var in blockRequest
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	if err := ac.accounts.SetBlocked(ac.accounts.Viewer(), in.Email, in.Blocked); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if !decode(w, r, maxRequestBodySize, &in) {
		return
	}
	if err := ac.accounts.Delete(ac.accounts.Viewer(), in.Email); err != nil {
		ac.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetAdminLog(w http.ResponseWriter, r *http.Request) {
	v := ac.accounts.Viewer()
	if !access.Resolve(v, ac.scene.Flags()).AuditLog {
		ac.writeError(w, r, services.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, ac.guard.Render("auditLog", v.Email, func() (any, error) {
		return ac.audit.Entries(), nil
	}))
}

func (ac *ApiController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	v := ac.accounts.Viewer()
	if !access.Resolve(v, ac.scene.Flags()).Leaderboard {
		ac.writeError(w, r, services.ErrForbidden)
		return
	}
	limit := cast.ToInt(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultBoardSize
	}
	writeJSON(w, http.StatusOK, ac.guard.Render("leaderboard", v.Email, func() (any, error) {
		return ac.accounts.Leaderboard(limit), nil
	}))
}
