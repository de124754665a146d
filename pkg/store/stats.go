package store

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/samber/lo"
)

const (
	HistoryLimit  = 10
	DemoUserCount = 24

	proPrice        = 29
	enterprisePrice = 99
	// logsPerUser estimates analysis volume when only the user set is known.
	logsPerUser = 12.5
)

var (
	revenueMonths  = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	growthBaseline = []int{12, 19, 35, 52, 68}
)

// PushHistory puts r at the front, drops any older entry with the same id
// and keeps at most HistoryLimit entries.
func PushHistory(history []models.AnalysisResult, r models.AnalysisResult) []models.AnalysisResult {
	rest := lo.Reject(history, func(h models.AnalysisResult, _ int) bool {
		return h.ID == r.ID
	})
	out := append([]models.AnalysisResult{r}, rest...)
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}

// EstimatedLogs is the analysis count shown when no real count is available.
func EstimatedLogs(users int) int {
	return int(math.Floor(float64(users) * logsPerUser))
}

// Aggregate builds dashboard figures from a user set. jitter returns values
// in [0,1) and may be nil.
func Aggregate(users []models.UserAccount, totalLogs int, jitter func() float64) *models.AdminStats {
	if jitter == nil {
		jitter = func() float64 { return 0 }
	}

	pro := lo.CountBy(users, func(u models.UserAccount) bool { return u.Plan == models.PlanPro })
	ent := lo.CountBy(users, func(u models.UserAccount) bool { return u.Plan == models.PlanEnterprise })
	revenue := pro*proPrice + ent*enterprisePrice

	tail := users[max(0, len(users)-5):]
	recent := lo.Map(tail, func(_ models.UserAccount, i int) models.UserAccount {
		return tail[len(tail)-1-i].Public()
	})

	return &models.AdminStats{
		TotalUsers:    len(users),
		TotalLogs:     totalLogs,
		Subscriptions: pro + ent,
		MonthlyIncome: revenue,
		RevenueHistory: lo.Map(revenueMonths, func(m string, i int) models.RevenuePoint {
			return models.RevenuePoint{
				Label: m,
				Value: float64(revenue)*(0.8+float64(i)*0.1) + jitter()*500,
			}
		}),
		UserGrowth:  append(append([]int{}, growthBaseline...), len(users)),
		RecentUsers: recent,
	}
}

// DemoUsers is the population seeded into an empty local store.
func DemoUsers(passwordHash string, now time.Time, rnd *rand.Rand) []models.UserAccount {
	return lo.Times(DemoUserCount, func(i int) models.UserAccount {
		plan := models.PlanFree
		switch {
		case i%3 == 0:
			plan = models.PlanPro
		case i%5 == 0:
			plan = models.PlanEnterprise
		}
		return models.UserAccount{
			ID:       fmt.Sprintf("user-%d", i),
			Name:     fmt.Sprintf("User %d", i+1),
			Email:    fmt.Sprintf("user%d@example.com", i+1),
			Password: passwordHash,
			Phone:    "1234567890",
			Plan:     plan,
			JoinedAt: now.UnixMilli() - rnd.Int63n(10_000_000_000),
			Role:     models.RoleUser,
		}
	})
}
