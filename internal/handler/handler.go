package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/zopper-dev/salesdost/backend/internal/config"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/incentive"
	"github.com/zopper-dev/salesdost/backend/internal/otp"
	"github.com/zopper-dev/salesdost/backend/internal/repository"
	"github.com/zopper-dev/salesdost/backend/internal/token"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	tokens      *token.Service
	engine      *incentive.Engine
	lifecycle   *incentive.Manager
	jobs        *incentive.RedisJobTracker
	gateway     *otp.GatewayClient
	mailChannel *amqp.Channel
	otpLimiter  *mstdlib.Middleware

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, tokens *token.Service, gateway *otp.GatewayClient, mailCh *amqp.Channel, rdb *redis.Client, limiterStore limiter.Store) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	var jobs *incentive.RedisJobTracker
	var recorder incentive.ProgressRecorder
	if rdb != nil {
		jobs = incentive.NewRedisJobTracker(rdb, time.Duration(cfg.Redis.JobProgressTTL)*time.Second, time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		recorder = jobs
	}

	otpRate := limiter.Rate{
		Period: time.Minute,
		Limit:  cfg.OTP.RatePerMinute,
	}

	h := &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		tokens:      tokens,
		engine:      incentive.NewEngine(repo),
		jobs:        jobs,
		gateway:     gateway,
		mailChannel: mailCh,
		otpLimiter:  mstdlib.NewMiddleware(limiter.New(limiterStore, otpRate)),

		Mux: chi.NewRouter(),
	}
	// the handler publishes the payout notifications the manager emits
	h.lifecycle = incentive.NewManager(repo, recorder, h)

	return h, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.With(h.auth).Get("/verify", h.Verify)
		r.Route("/sec", func(r chi.Router) {
			r.With(h.otpLimiter.Handler).Post("/send-otp", h.SendOTP)
			r.Post("/verify-otp", h.VerifyOTP)
		})
	})

	// everything below requires a resolved principal
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.With(h.RequireCapability(domain.CapabilityViewLeaderboard)).Get("/leaderboard", h.GetLeaderboard)

		r.Route("/secs/me", func(r chi.Router) {
			r.Use(h.RequireCapability(domain.CapabilitySubmitSales))
			r.Get("/", h.GetMyProfile)
			r.Patch("/", h.UpdateMyProfile)
		})

		r.Route("/sales-reports", func(r chi.Router) {
			r.Use(h.RequireCapability(domain.CapabilitySubmitSales))
			r.Post("/", h.CreateSalesReport)
			r.Get("/mine", h.ListMySalesReports)
		})

		r.Route("/tests", func(r chi.Router) {
			r.Use(h.RequireCapability(domain.CapabilitySubmitSales))
			r.Post("/submissions", h.CreateTestSubmission)
			r.Get("/submissions", h.ListMyTestSubmissions)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/sales-reports", func(r chi.Router) {
				r.With(h.RequireCapability(domain.CapabilityReviewReports)).Get("/", h.ListSalesReports)
				r.Group(func(r chi.Router) {
					r.Use(h.RequireCapability(domain.CapabilityManageIncentives))
					r.Post("/{id}/mark-paid", h.MarkSalesReportPaid)
					r.Delete("/{id}", h.DiscardSalesReport)
					r.Post("/bulk", h.BulkSalesReportAction)
				})
			})

			r.With(h.RequireCapability(domain.CapabilityManageIncentives)).Get("/bulk-jobs/{id}", h.GetBulkJob)

			r.Route("/campaigns", func(r chi.Router) {
				r.Use(h.RequireCapability(domain.CapabilityManageCampaigns))
				r.Post("/", h.CreateCampaign)
				r.Get("/", h.ListCampaigns)
				r.Patch("/{id}/deactivate", h.DeactivateCampaign)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(h.RequireCapability(domain.CapabilityApproveSignups))
				r.Get("/pending", h.GetPendingUsers)
				r.Post("/{id}/approve", h.ApproveUser)
				r.Post("/{id}/reject", h.RejectUser)
			})
		})
	})
}
