package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/securedocs/securedocs/backend/go-services/internal/document"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/service"
	"github.com/securedocs/securedocs/backend/go-services/internal/identity"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/securedocs/securedocs/backend/go-services/internal/signers"
	"github.com/securedocs/securedocs/backend/go-services/internal/storage"
	"github.com/securedocs/securedocs/backend/go-services/pkg/metrics"
)

// Handler exposes the document workflow over HTTP. The content store and the
// signer directory are optional; endpoints that need them return 503 when the
// dependency is not configured.
type Handler struct {
	svc       *service.Service
	directory *signers.Service
	journal   *receipts.Service
	store     *storage.ContentStore
}

func New(svc *service.Service, directory *signers.Service, journal *receipts.Service, store *storage.ContentStore) *Handler {
	return &Handler{svc: svc, directory: directory, journal: journal, store: store}
}

// Register mounts the document API. authRequired guards every mutating route;
// reads are public.
func (h *Handler) Register(r *gin.Engine, authRequired gin.HandlerFunc) {
	api := r.Group("/api")

	api.GET("/documents/:id", h.getDocument)
	api.GET("/documents", h.listBySigner)
	api.GET("/documents/:id/content", h.getContent)
	api.GET("/submissions/:id", h.getSubmission)

	mut := api.Group("/", authRequired)
	mut.POST("/documents", h.createDocument)
	mut.POST("/documents/:id/signers", h.addSigner)
	mut.POST("/documents/:id/signers/import", h.importSigners)
	mut.DELETE("/documents/:id/signers/:address", h.removeSigner)
	mut.POST("/documents/:id/signatures", h.signDocument)
	mut.POST("/uploads", h.upload)
}

type signerInput struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type createRequest struct {
	Title      string        `json:"title"`
	ContentRef string        `json:"contentRef"`
	Signers    []signerInput `json:"signers"`
}

func (h *Handler) createDocument(c *gin.Context) {
	caller, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// reject empty or repeated initial signers up front so a bad list never
	// submits anything
	seen := map[string]bool{}
	for _, s := range req.Signers {
		addr := document.NormalizeIdentity(s.Address)
		if addr == "" {
			h.fail(c, fmt.Errorf("%w: empty signer address", document.ErrValidation))
			return
		}
		if seen[addr] {
			h.fail(c, fmt.Errorf("%w: signer %s listed twice", document.ErrValidation, addr))
			return
		}
		seen[addr] = true
	}

	doc, rec, err := h.svc.CreateDocument(c.Request.Context(), caller, req.Title, req.ContentRef)
	if err != nil {
		h.fail(c, err)
		return
	}
	// initial signers from the create form; each follows add_signer semantics.
	// The document exists at this point, so a failed addition must not hide
	// its id; failures are reported per signer alongside the created record.
	var signerErrors []gin.H
	for _, s := range req.Signers {
		updated, _, err := h.svc.AddSigner(c.Request.Context(), caller, doc.ID, s.Address)
		if err != nil {
			signerErrors = append(signerErrors, gin.H{"address": s.Address, "error": err.Error()})
			continue
		}
		doc = updated
		h.recordProfile(c, s)
	}
	out := h.render(c, doc, rec)
	if len(signerErrors) > 0 {
		out["signerErrors"] = signerErrors
	}
	c.JSON(http.StatusCreated, out)
}

func (h *Handler) getDocument(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(c, doc, nil))
}

func (h *Handler) listBySigner(c *gin.Context) {
	signer := c.Query("signer")
	if signer == "" {
		// default to the caller's own signing queue
		addr, ok := identity.FromContext(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "signer query parameter required"})
			return
		}
		signer = addr
	}
	list, err := h.svc.ListBySigner(c.Request.Context(), signer)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, d := range list {
		out = append(out, gin.H{
			"id":        d.ID,
			"title":     d.Title,
			"createdAt": d.CreatedAt,
			"owner":     d.Owner,
			"status":    d.Status(),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) addSigner(c *gin.Context) {
	caller, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	var req signerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, rec, err := h.svc.AddSigner(c.Request.Context(), caller, c.Param("id"), req.Address)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.recordProfile(c, req)
	c.JSON(http.StatusOK, h.render(c, doc, rec))
}

// importSigners accepts CSV rows of "address,name,email" (name and email
// optional) and applies add_signer row by row. A bad row does not abort the
// batch; per-row outcomes are reported instead.
func (h *Handler) importSigners(c *gin.Context) {
	caller, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	reader := csv.NewReader(c.Request.Body)
	reader.FieldsPerRecord = -1

	type rowResult struct {
		Address string `json:"address"`
		Status  string `json:"status"`
		Error   string `json:"error,omitempty"`
	}
	results := []rowResult{}
	docID := c.Param("id")
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed csv: " + err.Error()})
			return
		}
		if len(record) == 0 {
			continue
		}
		in := signerInput{Address: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			in.Name = strings.TrimSpace(record[1])
		}
		if len(record) > 2 {
			in.Email = strings.TrimSpace(record[2])
		}
		if strings.EqualFold(in.Address, "address") {
			// header row
			continue
		}
		_, _, err = h.svc.AddSigner(c.Request.Context(), caller, docID, in.Address)
		if err != nil {
			// a duplicate row is confirmation of prior success, not a failure
			if errors.Is(err, document.ErrDuplicateMember) {
				results = append(results, rowResult{Address: in.Address, Status: "already_present"})
				continue
			}
			if errors.Is(err, document.ErrNotFound) || errors.Is(err, document.ErrNotOwner) {
				h.fail(c, err)
				return
			}
			results = append(results, rowResult{Address: in.Address, Status: "rejected", Error: err.Error()})
			continue
		}
		h.recordProfile(c, in)
		results = append(results, rowResult{Address: in.Address, Status: "added"})
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *Handler) removeSigner(c *gin.Context) {
	caller, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	doc, rec, err := h.svc.RemoveSigner(c.Request.Context(), caller, c.Param("id"), c.Param("address"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(c, doc, rec))
}

func (h *Handler) signDocument(c *gin.Context) {
	caller, ok := identity.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	doc, rec, err := h.svc.SignDocument(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.render(c, doc, rec))
}

func (h *Handler) upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store not configured"})
		return
	}
	ref, err := h.store.Upload(c.Request.Context(), c.Request.Body, c.ContentType())
	if err != nil {
		metrics.ContentUploads.WithLabelValues("error").Inc()
		h.fail(c, err)
		return
	}
	metrics.ContentUploads.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, gin.H{"contentRef": ref})
}

func (h *Handler) getContent(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "content store not configured"})
		return
	}
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	url, err := h.store.PresignedURL(c.Request.Context(), doc.ContentRef, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "content store error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contentRef": doc.ContentRef, "url": url})
}

func (h *Handler) getSubmission(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "receipt journal not configured"})
		return
	}
	rec, err := h.journal.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "receipt lookup failed"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// render builds the document view: the stored fields plus the derived status
// and per-signer signed state annotated with directory profiles.
func (h *Handler) render(c *gin.Context, d *document.Document, rec *receipts.Receipt) gin.H {
	signerViews := make([]gin.H, 0, len(d.AllowedSigners))
	for _, addr := range d.AllowedSigners {
		v := gin.H{"address": addr, "hasSigned": d.HasSigned(addr)}
		if h.directory != nil {
			if p, err := h.directory.GetByAddress(c.Request.Context(), addr); err == nil && p != nil {
				if p.Name != "" {
					v["name"] = p.Name
				}
				if p.Email != "" {
					v["email"] = p.Email
				}
			}
		}
		signerViews = append(signerViews, v)
	}
	out := gin.H{
		"id":             d.ID,
		"title":          d.Title,
		"contentRef":     d.ContentRef,
		"createdAt":      d.CreatedAt,
		"owner":          d.Owner,
		"signatures":     d.Signatures,
		"allowedSigners": d.AllowedSigners,
		"status":         d.Status(),
		"signers":        signerViews,
	}
	if rec != nil {
		out["submissionId"] = rec.SubmissionID
	}
	return out
}

func (h *Handler) recordProfile(c *gin.Context, in signerInput) {
	if h.directory == nil {
		return
	}
	// profile metadata is best effort; membership already committed
	_, _ = h.directory.Upsert(c.Request.Context(), in.Address, in.Name, in.Email)
}

// fail translates workflow errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrNotOwner), errors.Is(err, document.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrDuplicateMember), errors.Is(err, document.ErrDuplicateSignature):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, document.ErrUpload), errors.Is(err, document.ErrSubmission):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
