package main

import (
	"context"

	"github.com/cppla/lostfound/config"
	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/routes"
	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(
		&models.User{},
		&models.LostItemPost{},
		&models.FoundItemPost{},
		&models.ShareItemPost{},
		&models.NoticePost{},
		&models.Comment{},
	)

	ctx := context.Background()
	storage, err := services.NewStorage(ctx, cfg)
	if err != nil {
		utils.Sugar.Fatalf("upload storage: %v", err)
	}

	users := services.NewUserService(db, cfg.AdminUserIDs, utils.Logger.Named("users"))
	if err := users.EnsureAdmins(ctx, cfg.AdminUserIDs); err != nil {
		utils.Sugar.Fatalf("promote configured admins: %v", err)
	}

	r := routes.SetupRouter(db, storage)

	srv := utils.NewServer(":"+cfg.AppPort, r, cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout)
	if err := srv.Run(ctx); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
