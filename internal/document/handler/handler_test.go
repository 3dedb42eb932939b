package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/securedocs/securedocs/backend/go-services/internal/document/repository"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/service"
	"github.com/securedocs/securedocs/backend/go-services/internal/identity"
	"github.com/securedocs/securedocs/backend/go-services/internal/ledger"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/securedocs/securedocs/backend/go-services/internal/signers"
)

// testAuth resolves the caller identity from a header so tests can act as
// different wallets without a token round trip.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if addr := c.GetHeader("X-Test-Identity"); addr != "" {
			identity.Set(c, addr)
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	journal := receipts.NewService(receipts.NewMemoryRepository())
	svc := service.New(repo, ledger.NewLocalExecutor(repo, journal))
	dir := signers.NewService(signers.NewMemoryProfileRepository())
	h := New(svc, dir, journal, nil)

	g := gin.New()
	h.Register(g, testAuth())
	return g
}

func doJSON(t *testing.T, g *gin.Engine, method, path, ident, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if ident != "" {
		req.Header.Set("X-Test-Identity", ident)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	var out map[string]any
	if len(w.Body.Bytes()) > 0 && strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func createDoc(t *testing.T, g *gin.Engine, owner string) string {
	t.Helper()
	w, out := doJSON(t, g, http.MethodPost, "/api/documents", owner, `{"title":"Lease","contentRef":"cid123"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestCreateAndGetDocument(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xOwner")

	w, out := doJSON(t, g, http.MethodGet, "/api/documents/"+id, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Lease", out["title"])
	require.Equal(t, "cid123", out["contentRef"])
	require.Equal(t, "0xowner", out["owner"])
	require.Equal(t, "draft", out["status"])

	w, _ = doJSON(t, g, http.MethodGet, "/api/documents/doc_missing", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDocumentValidationAndAuth(t *testing.T) {
	g := newTestRouter()

	w, _ := doJSON(t, g, http.MethodPost, "/api/documents", "0xowner", `{"title":"","contentRef":"cid123"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, g, http.MethodPost, "/api/documents", "0xowner", `{"title":"Lease","contentRef":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, g, http.MethodPost, "/api/documents", "", `{"title":"Lease","contentRef":"cid123"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateWithInitialSigners(t *testing.T) {
	g := newTestRouter()
	w, out := doJSON(t, g, http.MethodPost, "/api/documents", "0xowner",
		`{"title":"Lease","contentRef":"cid123","signers":[{"address":"0xA","name":"Alice"},{"address":"0xB"}]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "pending_signatures", out["status"])

	signersOut, ok := out["signers"].([]any)
	require.True(t, ok)
	require.Len(t, signersOut, 2)
	first := signersOut[0].(map[string]any)
	require.Equal(t, "0xa", first["address"])
	require.Equal(t, "Alice", first["name"])
	require.Equal(t, false, first["hasSigned"])
}

func TestCreateRejectsRepeatedInitialSigner(t *testing.T) {
	g := newTestRouter()

	// a repeated address in the initial list fails before anything commits
	w, out := doJSON(t, g, http.MethodPost, "/api/documents", "0xowner",
		`{"title":"Lease","contentRef":"cid123","signers":[{"address":"0xA"},{"address":"0xa"}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Nil(t, out["id"])

	// nothing was persisted: the would-be signer sees no documents
	w, _ = doJSON(t, g, http.MethodGet, "/api/documents?signer=0xa", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Empty(t, list)

	// an empty address fails the same way
	w, _ = doJSON(t, g, http.MethodPost, "/api/documents", "0xowner",
		`{"title":"Lease","contentRef":"cid123","signers":[{"address":"  "}]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignerLifecycleOverHTTP(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xowner")

	// owner adds a signer
	w, _ := doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signers", "0xowner", `{"address":"0xA"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate add conflicts
	w, _ = doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signers", "0xowner", `{"address":"0xa"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	// non-owner may not manage membership
	w, _ = doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signers", "0xa", `{"address":"0xb"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	// unauthorized signing attempt
	w, _ = doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signatures", "0xb", "")
	require.Equal(t, http.StatusForbidden, w.Code)

	// authorized signature
	w, out := doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signatures", "0xa", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "fully_signed", out["status"])
	require.NotEmpty(t, out["submissionId"])

	// double signing conflicts
	w, _ = doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signatures", "0xa", "")
	require.Equal(t, http.StatusConflict, w.Code)

	// removal keeps the recorded signature
	w, out = doJSON(t, g, http.MethodDelete, "/api/documents/"+id+"/signers/0xa", "0xowner", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "draft", out["status"])
	sigs, ok := out["signatures"].([]any)
	require.True(t, ok)
	require.Equal(t, []any{"0xa"}, sigs)
}

func TestListBySigner(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xowner")
	w, _ := doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signers", "0xowner", `{"address":"0xA"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/documents?signer=0xa", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req)
	require.Equal(t, http.StatusOK, w2.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, id, list[0]["id"])

	// without a signer parameter and without identity the request is rejected
	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w2 = httptest.NewRecorder()
	g.ServeHTTP(w2, req)
	require.Equal(t, http.StatusBadRequest, w2.Code)
}

func TestImportSignersCSV(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xowner")

	csvBody := "address,name,email\n0xA,Alice,alice@example.com\n0xB,Bob,\n0xA,Alice,alice@example.com\n"
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id+"/signers/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-Test-Identity", "0xowner")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Results []struct {
			Address string `json:"address"`
			Status  string `json:"status"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Results, 3)
	require.Equal(t, "added", out.Results[0].Status)
	require.Equal(t, "added", out.Results[1].Status)
	require.Equal(t, "already_present", out.Results[2].Status)

	_, doc := doJSON(t, g, http.MethodGet, "/api/documents/"+id, "", "")
	allowed, ok := doc["allowedSigners"].([]any)
	require.True(t, ok)
	require.Equal(t, []any{"0xa", "0xb"}, allowed)
}

func TestSubmissionReceiptLookup(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xowner")
	_, out := doJSON(t, g, http.MethodPost, "/api/documents/"+id+"/signers", "0xowner", `{"address":"0xA"}`)
	sub, _ := out["submissionId"].(string)
	require.NotEmpty(t, sub)

	w, rec := doJSON(t, g, http.MethodGet, "/api/submissions/"+sub, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "confirmed", rec["status"])
	require.Equal(t, "add_signer", rec["kind"])

	w, _ = doJSON(t, g, http.MethodGet, "/api/submissions/unknown", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestContentEndpointsWithoutStore(t *testing.T) {
	g := newTestRouter()
	id := createDoc(t, g, "0xowner")

	w, _ := doJSON(t, g, http.MethodGet, "/api/documents/"+id+"/content", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = doJSON(t, g, http.MethodPost, "/api/uploads", "0xowner", "payload")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
