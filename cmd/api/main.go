package main

import (
	"context"
	"os"

	"github.com/yigit/admission/internal/pkg/logger"
	"github.com/yigit/admission/internal/server"
)

// @title College Admission API
// @version 1.0
// @description Student applications, document uploads, payments and the admin review dashboard

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token, also accepted from the session cookie

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
