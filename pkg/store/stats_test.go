package store

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string) models.AnalysisResult {
	return models.AnalysisResult{ID: id, FileName: id + ".pdf", Hierarchy: []models.HierarchyNode{}, Issues: []string{}}
}

func ids(history []models.AnalysisResult) []string {
	return lo.Map(history, func(r models.AnalysisResult, _ int) string { return r.ID })
}

func TestPushHistoryCapsAtTen(t *testing.T) {
	var history []models.AnalysisResult
	for i := 1; i <= 11; i++ {
		history = PushHistory(history, result(fmt.Sprintf("r%d", i)))
	}

	assert.Equal(t, []string{"r11", "r10", "r9", "r8", "r7", "r6", "r5", "r4", "r3", "r2"}, ids(history))
}

func TestPushHistoryReplacesSameID(t *testing.T) {
	history := []models.AnalysisResult{result("c"), result("b"), result("a")}

	updated := result("a")
	updated.Summary = "second pass"
	history = PushHistory(history, updated)

	assert.Equal(t, []string{"a", "c", "b"}, ids(history))
	assert.Equal(t, "second pass", history[0].Summary)
}

func TestDemoUsers(t *testing.T) {
	now := time.UnixMilli(20_000_000_000)
	users := DemoUsers("hash", now, rand.New(rand.NewSource(1)))

	require.Len(t, users, DemoUserCount)
	assert.Equal(t, models.UserAccount{
		ID: "user-0", Name: "User 1", Email: "user1@example.com", Password: "hash",
		Phone: "1234567890", Plan: models.PlanPro, JoinedAt: users[0].JoinedAt, Role: models.RoleUser,
	}, users[0])
	assert.Equal(t, models.PlanEnterprise, users[5].Plan)
	assert.Equal(t, models.PlanPro, users[15].Plan, "divisible by three wins")
	assert.Equal(t, models.PlanFree, users[1].Plan)

	for _, u := range users {
		assert.LessOrEqual(t, u.JoinedAt, now.UnixMilli())
		assert.Greater(t, u.JoinedAt, now.UnixMilli()-10_000_000_000)
	}
}

func TestAggregateDemoPopulation(t *testing.T) {
	users := DemoUsers("hash", time.Now(), rand.New(rand.NewSource(1)))

	stats := Aggregate(users, EstimatedLogs(len(users)), nil)

	assert.Equal(t, 24, stats.TotalUsers)
	assert.Equal(t, 300, stats.TotalLogs)
	assert.Equal(t, 11, stats.Subscriptions)
	assert.Equal(t, 8*29+3*99, stats.MonthlyIncome)
	assert.Equal(t, []int{12, 19, 35, 52, 68, 24}, stats.UserGrowth)

	require.Len(t, stats.RevenueHistory, 6)
	assert.Equal(t, "Jan", stats.RevenueHistory[0].Label)
	assert.Equal(t, "Jun", stats.RevenueHistory[5].Label)
	assert.InDelta(t, 529*0.8, stats.RevenueHistory[0].Value, 1e-9)
	assert.InDelta(t, 529*1.3, stats.RevenueHistory[5].Value, 1e-9)

	assert.Equal(t, []string{"user-23", "user-22", "user-21", "user-20", "user-19"},
		lo.Map(stats.RecentUsers, func(u models.UserAccount, _ int) string { return u.ID }))
	for _, u := range stats.RecentUsers {
		assert.Empty(t, u.Password)
	}
}

func TestAggregateJitterBounds(t *testing.T) {
	users := []models.UserAccount{{ID: "u", Plan: models.PlanPro}}
	stats := Aggregate(users, 0, func() float64 { return 0.999 })

	for i, p := range stats.RevenueHistory {
		base := 29 * (0.8 + float64(i)*0.1)
		assert.GreaterOrEqual(t, p.Value, base)
		assert.Less(t, p.Value, base+500)
	}
	assert.Equal(t, []string{"u"}, lo.Map(stats.RecentUsers, func(u models.UserAccount, _ int) string { return u.ID }))
}

func TestEstimatedLogs(t *testing.T) {
	assert.Equal(t, 12, EstimatedLogs(1))
	assert.Equal(t, 37, EstimatedLogs(3))
	assert.Equal(t, 0, EstimatedLogs(0))
}
