package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"dhammasound/config"
	"dhammasound/core/auth"
	"dhammasound/core/slug"
	"dhammasound/db"
	"dhammasound/logger"
	"dhammasound/model"
	"dhammasound/repository"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and load the baseline data",
	Long:  `Migrates the database and inserts the roles, the admin account and a small starter catalog. Safe to run on an already seeded database.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})

		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Fatal("failed to connect to database", logger.ErrorField(err))
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrate(db.GormDB); err != nil {
			logger.Fatal("failed to migrate database", logger.ErrorField(err))
		}
		if err := seed(cfg); err != nil {
			logger.Fatal("seed failed", logger.ErrorField(err))
		}
		logger.Info("seed completed")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(cfg *config.Config) error {
	ctx := context.Background()

	roleRepo := repository.NewGormRoleRepository(db.GormDB)
	userRepo := repository.NewGormUserRepository(db.GormDB)
	priestRepo := repository.NewGormPriestRepository(db.GormDB)
	albumRepo := repository.NewGormAlbumRepository(db.GormDB)
	audioRepo := repository.NewGormAudioRepository(db.GormDB)
	quoteRepo := repository.NewGormQuoteRepository(db.GormDB)

	roles := map[string]string{
		"admin": "ผู้ดูแลระบบ",
		"user":  "ผู้ใช้งานทั่วไป",
	}
	for name, description := range roles {
		existing, err := roleRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if err := roleRepo.Create(ctx, &model.Role{Name: name, Description: description, IsActive: true}); err != nil {
			return err
		}
		logger.Info("role seeded", logger.String("role", name))
	}

	adminRole, err := roleRepo.GetByName(ctx, "admin")
	if err != nil {
		return err
	}

	admin, err := userRepo.GetByEmail(ctx, "admin@admin.com")
	if err != nil {
		return err
	}
	if admin == nil {
		hash, err := auth.HashPassword("admin1234", cfg.BcryptCost)
		if err != nil {
			return err
		}
		admin = &model.User{
			FirstName: "แอดมิน",
			LastName:  "ระบบ",
			Email:     "admin@admin.com",
			Password:  hash,
			Avatar:    model.DefaultUserAvatar,
			RoleID:    adminRole.ID,
			IsActive:  true,
		}
		if err := userRepo.CreateWithPlaylists(ctx, admin); err != nil {
			return err
		}
		logger.Info("admin account seeded", logger.Int64("userId", admin.ID))
	}

	quotes, _, err := quoteRepo.List(ctx, 0, 1)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		err := quoteRepo.BulkCreate(ctx, []model.Quote{
			{OrderNumber: 1, Title: "ธรรมะย่อมรักษาผู้ประพฤติธรรม", Author: "พุทธพจน์", IsActive: true},
			{OrderNumber: 2, Title: "ตนแลเป็นที่พึ่งแห่งตน", Author: "พุทธพจน์", IsActive: true},
		})
		if err != nil {
			return err
		}
		logger.Info("quotes seeded")
	}

	priestName := "หลวงปู่มั่น ภูริทัตโต"
	priest, err := priestRepo.GetActiveBySlug(ctx, slug.Normalize(priestName))
	if err != nil {
		return err
	}
	if priest == nil {
		priest = &model.Priest{
			FullName:    priestName,
			Description: "พระอาจารย์ใหญ่สายวิปัสสนากรรมฐาน",
			Avatar:      model.DefaultPriestAvatar,
			Slug:        slug.Normalize(priestName),
			IsActive:    true,
		}
		if err := priestRepo.Create(ctx, priest); err != nil {
			return err
		}
		logger.Info("priest seeded", logger.Int64("priestId", priest.ID))
	}

	albumName := "มุตโตทัย"
	album, err := albumRepo.GetByName(ctx, albumName)
	if err != nil {
		return err
	}
	if album == nil {
		album = &model.Album{
			Name:        albumName,
			Description: "ธรรมเทศนาชุดมุตโตทัย",
			CoverImage:  model.DefaultAlbumCover,
			Slug:        slug.Normalize(albumName),
			PriestID:    priest.ID,
			IsRecommend: true,
			IsActive:    true,
		}
		if err := albumRepo.Create(ctx, album); err != nil {
			return err
		}
		logger.Info("album seeded", logger.Int64("albumId", album.ID))

		err := audioRepo.Create(ctx, &model.Audio{
			OrderNumber: 1,
			Name:        "มุตโตทัย ตอนที่ 1",
			Source:      "/audios/muttothai-01.mp3",
			AlbumID:     album.ID,
			IsActive:    true,
		})
		if err != nil {
			return err
		}
		logger.Info("audio seeded")
	}

	return nil
}
