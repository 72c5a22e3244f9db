package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Temutjin2k/campus-ride/internal/domain/models"
	"github.com/Temutjin2k/campus-ride/internal/domain/types"
	"github.com/Temutjin2k/campus-ride/internal/service/auth"
	"github.com/Temutjin2k/campus-ride/pkg/logger"
	wrap "github.com/Temutjin2k/campus-ride/pkg/logger/wrapper"
	"github.com/google/uuid"
)

var (
	secret = flag.String("secret", os.Getenv("AUTH_JWT_SECRET"), "JWT signing secret")
	role   = flag.String("role", string(types.RiderRole), "RIDER | DRIVER | ADMIN")
	userID = flag.String("user-id", "", "actor id, random when empty")
	ttl    = flag.Duration("ttl", 24*time.Hour, "token lifetime")
)

// devtoken prints a signed access token for local testing.
func main() {
	flag.Parse()

	lg := logger.InitLogger("devtoken", logger.LevelInfo)
	ctx := wrap.WithAction(context.Background(), "issue_dev_token")

	if *secret == "" {
		*secret = "supersecretkey"
	}

	id := uuid.New()
	if *userID != "" {
		var err error
		if id, err = uuid.Parse(*userID); err != nil {
			lg.Error(ctx, "invalid user id", err)
			os.Exit(1)
		}
	}

	tokens := auth.NewTokenService(*secret, *ttl, lg)
	token, exp, err := tokens.Issue(ctx, &models.User{ID: id, Role: types.UserRole(*role)})
	if err != nil {
		lg.Error(wrap.ErrorCtx(ctx, err), "failed to issue token", err)
		os.Exit(1)
	}

	fmt.Printf("user_id=%s\nrole=%s\nexpires=%s\ntoken=%s\n", id, *role, exp.Format(time.RFC3339), token)
}
