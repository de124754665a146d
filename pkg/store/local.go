package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/pkg/auth"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Keys of the on-device collections. Each holds one JSON document.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "current_user"
	KeyHistory     = "history"
)

type LocalConfig struct {
	Dir      string
	InMemory bool
	HashCost int
	Now      func() time.Time
	Rand     *rand.Rand
}

// Local is the on-device fallback store backed by badger.
type Local struct {
	config LocalConfig
	db     *badger.DB
	// mu serializes read-modify-write cycles on the JSON collections.
	mu sync.Mutex
}

func OpenLocal(config LocalConfig) (*Local, error) {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	opts := badger.DefaultOptions(config.Dir).WithLoggingLevel(badger.ERROR)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return &Local{config: config, db: db}, nil
}

func (l *Local) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

func (l *Local) Login(_ context.Context, email, password string) (*models.UserAccount, error) {
	users, err := l.usersSeeded()
	if err != nil {
		return nil, err
	}

	u, ok := lo.Find(users, func(u models.UserAccount) bool {
		return strings.EqualFold(u.Email, email) && auth.CheckPassword(u.Password, password)
	})
	if !ok {
		return nil, models.NewInvalidCredentialError("invalid email or password")
	}
	pub := u.Public()
	return &pub, nil
}

func (l *Local) Signup(_ context.Context, user models.UserAccount) error {
	hash, err := auth.HashPassword(user.Password, l.config.HashCost)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.db.Update(func(txn *badger.Txn) error {
		var users []models.UserAccount
		if _, err := getJSON(txn, KeyUsers, &users); err != nil {
			return err
		}
		if hasEmail(users, user.Email) {
			return models.NewDuplicateEmailError(user.Email)
		}

		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		user.Password = hash
		user.Plan = models.PlanFree
		user.Role = models.RoleUser
		user.JoinedAt = l.config.Now().UnixMilli()

		return setJSON(txn, KeyUsers, append(users, user))
	})
}

func (l *Local) CheckEmailExists(_ context.Context, email string) (bool, error) {
	var users []models.UserAccount
	if err := l.read(KeyUsers, &users); err != nil {
		return false, err
	}
	return hasEmail(users, email), nil
}

func (l *Local) Stats(_ context.Context) (*models.AdminStats, error) {
	users, err := l.usersSeeded()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return Aggregate(users, EstimatedLogs(len(users)), l.config.Rand.Float64), nil
}

// SaveAnalysis records r in the device history. History is per device, so
// userID is not used as a filter.
func (l *Local) SaveAnalysis(_ context.Context, _ string, r models.AnalysisResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.db.Update(func(txn *badger.Txn) error {
		var history []models.AnalysisResult
		if _, err := getJSON(txn, KeyHistory, &history); err != nil {
			return err
		}
		return setJSON(txn, KeyHistory, PushHistory(history, r))
	})
}

func (l *Local) History(_ context.Context, _ string) ([]models.AnalysisResult, error) {
	history := []models.AnalysisResult{}
	if err := l.read(KeyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// CurrentUser returns the persisted signed-in account, or nil.
func (l *Local) CurrentUser() (*models.UserAccount, error) {
	var u *models.UserAccount
	if err := l.read(KeyCurrentUser, &u); err != nil {
		return nil, err
	}
	return u, nil
}

func (l *Local) SetCurrentUser(u models.UserAccount) error {
	pub := u.Public()
	return l.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, KeyCurrentUser, pub)
	})
}

func (l *Local) ClearCurrentUser() error {
	return l.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(KeyCurrentUser))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// usersSeeded returns the user collection, seeding the demo population
// first when it is empty.
func (l *Local) usersSeeded() ([]models.UserAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var users []models.UserAccount
	err := l.db.Update(func(txn *badger.Txn) error {
		if _, err := getJSON(txn, KeyUsers, &users); err != nil {
			return err
		}
		if len(users) > 0 {
			return nil
		}

		hash, err := auth.HashPassword("password", l.config.HashCost)
		if err != nil {
			return err
		}
		users = DemoUsers(hash, l.config.Now(), l.config.Rand)
		return setJSON(txn, KeyUsers, users)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (l *Local) read(key string, v interface{}) error {
	return l.db.View(func(txn *badger.Txn) error {
		_, err := getJSON(txn, key, v)
		return err
	})
}

func getJSON(txn *badger.Txn, key string, v interface{}) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

func hasEmail(users []models.UserAccount, email string) bool {
	return lo.ContainsBy(users, func(u models.UserAccount) bool {
		return strings.EqualFold(u.Email, strings.TrimSpace(email))
	})
}
