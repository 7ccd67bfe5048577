package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hotellisting/hotellisting-api/application/port/inbound"
	"github.com/hotellisting/hotellisting-api/application/usecase"
	"github.com/hotellisting/hotellisting-api/domain/entity"
	"github.com/hotellisting/hotellisting-api/infrastructure/adapter/postgres"
	"github.com/hotellisting/hotellisting-api/infrastructure/config"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/jwt"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/logger"
	"github.com/hotellisting/hotellisting-api/infrastructure/service/password"
)

func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "administrator email")
	userPassword := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "administrator password")
	firstName := flag.String("first-name", "System", "first name")
	lastName := flag.String("last-name", "Administrator", "last name")
	flag.Parse()

	if *email == "" || *userPassword == "" {
		log.Fatal("email and password are required (flags or ADMIN_EMAIL / ADMIN_PASSWORD)")
	}

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IdentityStore != config.StorePostgres {
		log.Fatalf("IDENTITY_STORE must be %q to create a persistent administrator", config.StorePostgres)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	passwordService := password.NewBcryptPasswordService(cfg.BcryptCost)
	identity := postgres.NewIdentityStoreAdapter(db, passwordService)
	refreshTokens := usecase.NewRefreshTokenStore(
		postgres.NewNamedTokenRepositoryAdapter(db),
		tokenService,
		cfg.RefreshTokenSalt,
		cfg.RefreshTokenTTL,
	)
	auth := usecase.NewAuthUseCase(identity, tokenService, refreshTokens, nil, logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "create-admin",
	}))

	errs, err := auth.RegisterWithRole(ctx, inbound.RoleRegistrationRequest{
		RegistrationRequest: inbound.RegistrationRequest{
			LoginRequest: inbound.LoginRequest{Email: *email, Password: *userPassword},
			FirstName:    *firstName,
			LastName:     *lastName,
		},
		Role: string(entity.RoleAdministrator),
	})
	if err != nil {
		log.Fatalf("Failed to create administrator: %v", err)
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s: %s\n", e.Code, e.Description)
		}
		os.Exit(1)
	}

	fmt.Printf("Administrator %s created\n", *email)
}
