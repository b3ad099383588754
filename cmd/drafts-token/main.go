// Command drafts-token mints an access token for local testing of the drafts API.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/internal/service"
	"github.com/noah-isme/wiki-drafts/pkg/config"
	"github.com/noah-isme/wiki-drafts/pkg/logger"
)

func main() {
	userID := flag.Int64("user", 0, "wiki user id")
	role := flag.String("role", string(models.RoleUser), "user, reviewer or sysop")
	caps := flag.String("caps", "", "comma separated extra capabilities")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	req := service.IssueTokenRequest{UserID: *userID, Role: models.UserRole(*role)}
	for _, c := range strings.Split(*caps, ",") {
		if c = strings.TrimSpace(c); c != "" {
			req.Capabilities = append(req.Capabilities, models.Capability(c))
		}
	}

	auth := service.NewAuthService(nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	token, expires, err := auth.IssueToken(req)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
	logr.Sugar().Infow("token expires", "at", expires)
}
