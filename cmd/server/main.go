package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/pa-assistant/backend/internal/config"
	"github.com/pa-assistant/backend/internal/database"
	"github.com/pa-assistant/backend/internal/handler"
	"github.com/pa-assistant/backend/internal/mailer"
	"github.com/pa-assistant/backend/internal/middleware"
	"github.com/pa-assistant/backend/internal/queue"
	"github.com/pa-assistant/backend/internal/repository"
	"github.com/pa-assistant/backend/internal/router"
	"github.com/pa-assistant/backend/internal/token"
	"github.com/pa-assistant/backend/internal/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(database.Config{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	tasks := repository.NewTaskRepo(db)
	contacts := repository.NewContactRepo(db)
	appointments := repository.NewAppointmentRepo(db)

	mail := mailer.New(mailer.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		SendTimeout: cfg.MailSendTimeout,
		FailSilent:  cfg.MailFailSilent,
	})

	gen := token.New(cfg.TokenSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	hasher := &utils.BcryptHasher{Cost: cfg.BcryptCost}
	policy := utils.DefaultPolicy{}

	authH := handler.NewAuthHandler(cfg, users, sessions, gen, mail, policy, hasher)
	taskH := handler.NewTaskHandler(tasks)
	contactH := handler.NewContactHandler(contacts)
	apptH := handler.NewAppointmentHandler(appointments, users, contacts, mail)

	// Event consumer runs alongside the server and reconnects on its own.
	go queue.StartEventConsumer()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, middleware.NewTokenBucket(rlCfg, rdb))
	router.RegisterResources(e, cfg.JWTSecret, taskH, contactH, apptH)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
