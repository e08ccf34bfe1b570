package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zopper-dev/salesdost/backend/internal/config"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
	"github.com/zopper-dev/salesdost/backend/internal/repository"
	"github.com/zopper-dev/salesdost/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

var storeIDs = []string{
	"STR-DEL-001", "STR-DEL-002", "STR-MUM-001", "STR-MUM-002",
	"STR-BLR-001", "STR-BLR-002", "STR-HYD-001", "STR-CHN-001",
}

// Seed fills a development database with stores, SECs, campaigns, sales
// reports and a few pending signups. The same source produces the same
// dataset, so a fixed seed gives reproducible development data.
func Seed(cfg *config.Config, repo *repository.Repository, r *rand.Rand) {
	secs := seedSECs(cfg, repo, r)
	seedCampaigns(repo, r)
	seedSalesReports(cfg, repo, r, secs)
	seedPendingSignups(repo, r)
}

func seedSECs(cfg *config.Config, repo *repository.Repository, r *rand.Rand) []*domain.SEC {
	secs := make([]*domain.SEC, 0, cfg.Seed.SECCount)

	for i := 0; i < cfg.Seed.SECCount; i++ {
		sec := utils.GenerateRandomSEC(r, storeIDs[r.Intn(len(storeIDs))])
		if err := repo.CreateSEC(sec); err != nil {
			slog.Error("failed to seed SEC", "phone", sec.Phone, "error", err)
			continue
		}
		secs = append(secs, sec)
	}

	slog.Info("seeded SECs", "count", len(secs))
	return secs
}

func seedCampaigns(repo *repository.Repository, r *rand.Rand) {
	count := 0
	for _, storeID := range storeIDs {
		campaign := &domain.Campaign{
			StoreID:        storeID,
			DeviceID:       fmt.Sprintf("SM-%04d", r.Intn(10000)),
			PlanID:         fmt.Sprintf("PLAN-%s-%02d", utils.GenerateRandomPlanType(r), r.Intn(100)),
			IncentiveType:  domain.IncentiveFlat,
			IncentiveValue: decimal.NewFromInt(int64(r.Intn(400) + 100)),
			StartDate:      time.Now().AddDate(0, 0, -15),
			EndDate:        time.Now().AddDate(0, 0, 15),
			Active:         true,
		}
		if err := repo.CreateCampaign(campaign); err != nil {
			slog.Error("failed to seed campaign", "storeId", storeID, "error", err)
			continue
		}
		count++
	}

	slog.Info("seeded campaigns", "count", count)
}

func seedSalesReports(cfg *config.Config, repo *repository.Repository, r *rand.Rand, secs []*domain.SEC) {
	if len(secs) == 0 {
		return
	}

	count := 0
	for i := 0; i < cfg.Seed.ReportCount; i++ {
		sec := secs[r.Intn(len(secs))]
		report := utils.GenerateRandomSalesReport(r, sec.ID, sec.StoreID)
		if err := repo.CreateSalesReport(report); err != nil {
			slog.Error("failed to seed sales report", "imei", report.IMEI, "error", err)
			continue
		}
		count++

		// roughly two thirds of seeded reports are already paid
		if r.Intn(3) != 0 {
			if _, err := repo.SetSalesReportPaidAt(report.ID, time.Now().AddDate(0, 0, -r.Intn(10))); err != nil {
				slog.Error("failed to mark seeded report paid", "reportId", report.ID, "error", err)
			}
		}
	}

	slog.Info("seeded sales reports", "count", count)
}

func seedPendingSignups(repo *repository.Repository, r *rand.Rand) {
	roles := []domain.Role{domain.RoleABM, domain.RoleASE, domain.RoleZSM, domain.RoleZSE}

	count := 0
	for i := 0; i < 5; i++ {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(utils.GenerateRandomPassword(r, 12)), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("failed to hash seed password", "error", err)
			continue
		}

		fullName := utils.GenerateRandomFullName(r)
		user := &domain.User{
			Username:        fmt.Sprintf("manager%03d", r.Intn(1000)),
			PasswordHash:    string(passwordHash),
			Role:            roles[r.Intn(len(roles))],
			ValidationState: domain.ValidationPending,
		}
		if err := repo.CreateUser(user); err != nil {
			slog.Error("failed to seed pending user", "username", user.Username, "error", err)
			continue
		}

		profile := &domain.RoleProfile{
			UserID:   user.ID,
			FullName: fullName,
			Phone:    utils.GenerateRandomPhone(r),
			Email:    fmt.Sprintf("%s@salesdost.example", user.Username),
			StoreIDs: []string{storeIDs[r.Intn(len(storeIDs))]},
		}
		if err := repo.CreateRoleProfile(profile); err != nil {
			slog.Error("failed to seed role profile", "username", user.Username, "error", err)
			continue
		}
		count++
	}

	slog.Info("seeded pending signups", "count", count)
}
