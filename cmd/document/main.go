// Standalone memory-backed document service for local development. No Mongo,
// Redis or MinIO required; tokens are parsed without signature verification.
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/securedocs/securedocs/backend/go-services/internal/document/handler"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/repository"
	"github.com/securedocs/securedocs/backend/go-services/internal/document/service"
	"github.com/securedocs/securedocs/backend/go-services/internal/ledger"
	"github.com/securedocs/securedocs/backend/go-services/internal/oidc"
	"github.com/securedocs/securedocs/backend/go-services/internal/receipts"
	"github.com/securedocs/securedocs/backend/go-services/internal/signers"
	"github.com/securedocs/securedocs/backend/go-services/pkg/middleware"
)

func main() {
	port := os.Getenv("DOC_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), gin.Logger(), gin.Recovery())

	repo := repository.NewMemoryRepo()
	journal := receipts.NewService(receipts.NewMemoryRepository())
	exec := ledger.NewLocalExecutor(repo, journal)
	svc := service.New(repo, exec)
	directory := signers.NewService(signers.NewMemoryProfileRepository())

	log.Printf("warning: dev server accepts unverified bearer tokens")
	authRequired := middleware.AuthMiddleware(oidc.NewInsecureVerifier())

	h := handler.New(svc, directory, journal, nil)
	h.Register(r, authRequired)

	log.Printf("document service (memory-backed) listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
