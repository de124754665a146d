package models

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone"`
	Plan     Plan   `json:"plan,omitempty"`
	JoinedAt int64  `json:"joinedAt,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

func (u UserAccount) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public returns a copy that is safe to hand to clients.
func (u UserAccount) Public() UserAccount {
	u.Password = ""
	return u
}

type RevenuePoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type AdminStats struct {
	TotalUsers     int            `json:"totalUsers"`
	TotalLogs      int            `json:"totalLogs"`
	Subscriptions  int            `json:"subscriptions"`
	MonthlyIncome  int            `json:"monthlyIncome"`
	RevenueHistory []RevenuePoint `json:"revenueHistory"`
	UserGrowth     []int          `json:"userGrowth"`
	RecentUsers    []UserAccount  `json:"recentUsers"`
}
