package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

var firstNames = []string{
	"Amit", "Rahul", "Priya", "Sneha", "Vikram", "Anjali", "Rohan", "Pooja",
	"Arjun", "Kavya", "Suresh", "Neha", "Karan", "Divya", "Manish", "Ritu",
	"Deepak", "Shreya", "Nikhil", "Meera",
}

var lastNames = []string{
	"Sharma", "Verma", "Patel", "Reddy", "Gupta", "Singh", "Kumar", "Iyer",
	"Joshi", "Nair", "Mehta", "Chopra", "Das", "Rao", "Mishra", "Bhat",
}

var planTypes = []string{"COMBO", "ADLD", "EW", "SCREEN"}

var maritalStatuses = []string{"single", "married"}

// The seed-data generators take an explicit source so a fixed seed produces
// the same dataset. GenerateRandomOTP stays on the package-level source, which
// is safe for concurrent handler use.

func GenerateRandomFullName(r *rand.Rand) string {
	return firstNames[r.Intn(len(firstNames))] + " " + lastNames[r.Intn(len(lastNames))]
}

// GenerateRandomPhone returns a 10-digit Indian mobile number (leading digit
// 6-9).
func GenerateRandomPhone(r *rand.Rand) string {
	phone := fmt.Sprintf("%d", r.Intn(4)+6)
	for i := 0; i < 9; i++ {
		phone += fmt.Sprintf("%d", r.Intn(10))
	}
	return phone
}

func GenerateRandomIMEI(r *rand.Rand) string {
	imei := ""
	for i := 0; i < 15; i++ {
		imei += fmt.Sprintf("%d", r.Intn(10))
	}
	return imei
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(r *rand.Rand, length int) string {
	password := make([]rune, length)
	for i := range password {
		password[i] = letters[r.Intn(len(letters))]
	}
	return string(password)
}

func GenerateRandomPlanType(r *rand.Rand) string {
	return planTypes[r.Intn(len(planTypes))]
}

func GenerateRandomSEC(r *rand.Rand, storeID string) *domain.SEC {
	sec := &domain.SEC{
		Phone:    GenerateRandomPhone(r),
		FullName: GenerateRandomFullName(r),
		StoreID:  storeID,
	}

	// roughly half the seeded SECs have a complete profile
	if r.Intn(2) == 0 {
		birthDate := time.Now().AddDate(-20-r.Intn(25), -r.Intn(12), -r.Intn(28))
		sec.PhotoURL = "https://cdn.salesdost.example/photos/" + sec.Phone + ".jpg"
		sec.BirthDate = &birthDate
		sec.MaritalStatus = maritalStatuses[r.Intn(len(maritalStatuses))]
	}

	return sec
}

func GenerateRandomSalesReport(r *rand.Rand, secID int64, storeID string) *domain.SalesReport {
	planType := GenerateRandomPlanType(r)
	planPrice := decimal.NewFromInt(int64(r.Intn(40) + 10)).Mul(decimal.NewFromInt(100))

	return &domain.SalesReport{
		SECID:           secID,
		StoreID:         storeID,
		DeviceID:        fmt.Sprintf("SM-%04d", r.Intn(10000)),
		PlanID:          fmt.Sprintf("PLAN-%s-%02d", planType, r.Intn(100)),
		PlanType:        planType,
		PlanPrice:       planPrice,
		IMEI:            GenerateRandomIMEI(r),
		DateOfSale:      time.Now().AddDate(0, 0, -r.Intn(30)),
		IncentiveEarned: planPrice.Div(decimal.NewFromInt(10)),
	}
}
