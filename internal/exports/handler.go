package exports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nomadtax_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"

// Handler handles the CSV export and credential management.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ---- Public CSV export (basic auth) ----

var csvHeader = []string{
	"id", "name", "email", "phone", "residence",
	"qualified", "score", "status", "source", "created_at",
}

// ExportLeadsCSV streams the lead list as CSV. Optional query params:
// from/to (YYYY-MM-DD, inclusive) and qualified (true/false).
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	var from, to *time.Time
	var qualified *bool

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "from must be YYYY-MM-DD", nil)
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "to must be YYYY-MM-DD", nil)
			return
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	if raw := c.Query("qualified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "qualified must be true or false", nil)
			return
		}
		qualified = &v
	}

	rows, err := h.repo.LeadsForExport(c.Request.Context(), from, to, qualified)
	if httpkit.HandleError(c, err) {
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().UTC().Format(dateLayout))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(csvHeader)
	for _, row := range rows {
		record := []string{
			row.ID.String(),
			row.Name,
			row.Email,
			row.Phone,
			deref(row.Residence),
			strconv.FormatBool(row.Qualified),
			strconv.Itoa(row.Score),
			row.Status,
			deref(row.Source),
			row.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return
		}
	}
	w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ---- Admin credential management (JWT authenticated) ----

type UpsertCredentialRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=12,max=128"`
}

type CredentialResponse struct {
	Username   string     `json:"username"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

func (h *Handler) HandleUpsertCredential(c *gin.Context) {
	var req UpsertCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to hash password", nil)
		return
	}

	var createdBy *uuid.UUID
	if id, ok := httpkit.UserID(c); ok {
		createdBy = &id
	}

	cred, err := h.repo.UpsertCredential(c.Request.Context(), req.Username, string(hash), createdBy)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, CredentialResponse{
		Username:   cred.Username,
		CreatedAt:  cred.CreatedAt,
		UpdatedAt:  cred.UpdatedAt,
		LastUsedAt: cred.LastUsedAt,
	})
}

func (h *Handler) HandleListCredentials(c *gin.Context) {
	creds, err := h.repo.ListCredentials(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]CredentialResponse, 0, len(creds))
	for _, cred := range creds {
		out = append(out, CredentialResponse{
			Username:   cred.Username,
			CreatedAt:  cred.CreatedAt,
			UpdatedAt:  cred.UpdatedAt,
			LastUsedAt: cred.LastUsedAt,
		})
	}
	httpkit.OK(c, out)
}

func (h *Handler) HandleDeleteCredential(c *gin.Context) {
	username := c.Param("username")
	if err := h.repo.DeleteCredential(c.Request.Context(), username); err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			httpkit.Error(c, http.StatusNotFound, "credential not found", nil)
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
