// Package ledger keeps member balances and the per-sender daily award quota.
//
// Every operation runs under one exclusive lock, so a read-modify-write
// sequence such as Transfer never interleaves with another operation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"thanks-bot/internal/models"
)

const (
	dateLayout = "2006-01-02"

	DefaultLeaderboardLimit = 10
)

var (
	ErrUnknownUser = errors.New("user is not registered")
	ErrLockTimeout = errors.New("timed out waiting for the ledger lock")
)

type Outcome int

const (
	Created Outcome = iota
	AlreadyExists
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "already_exists"
}

type Status int

const (
	Awarded Status = iota
	QuotaExceeded
)

func (s Status) String() string {
	if s == Awarded {
		return "awarded"
	}
	return "quota_exceeded"
}

// Profile is the display metadata the chat transport knows about a member.
type Profile struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Quota is the sender's award counter for Date.
type Quota struct {
	Count int
	Date  string
}

// Standing is one leaderboard row.
type Standing struct {
	FirstName string
	LastName  string
	Username  string
	Total     int64
}

// Transfer reports the outcome of a quota-gated award.
type Transfer struct {
	Status  Status
	Balance int64 // recipient balance after the award
	Used    int   // sender's awards today, including this one
	Limit   int   // 0 means unlimited
}

type Option func(*Ledger)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLockTimeout bounds how long an operation waits for the lock.
// Zero waits until the context is done.
func WithLockTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.lockTimeout = d }
}

type Ledger struct {
	db          *gorm.DB
	lock        chan struct{}
	lockTimeout time.Duration
	now         func() time.Time
	maxPerDay   int
}

// New builds a ledger over a migrated store. maxPerDay <= 0 disables the
// daily cap.
func New(db *gorm.DB, maxPerDay int, opts ...Option) *Ledger {
	if maxPerDay < 0 {
		maxPerDay = 0
	}
	l := &Ledger{
		db:        db,
		lock:      make(chan struct{}, 1),
		now:       time.Now,
		maxPerDay: maxPerDay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Today is the current UTC calendar date.
func (l *Ledger) Today() string {
	return l.now().UTC().Format(dateLayout)
}

// MaxPerDay returns the daily cap, 0 when unlimited.
func (l *Ledger) MaxPerDay() int {
	return l.maxPerDay
}

// Remaining is how many awards q still allows today, or -1 when unlimited.
// A quota recorded on an earlier day counts as unused.
func (l *Ledger) Remaining(q Quota) int {
	if l.maxPerDay == 0 {
		return -1
	}
	used := q.Count
	if q.Date != l.Today() {
		used = 0
	}
	if used >= l.maxPerDay {
		return 0
	}
	return l.maxPerDay - used
}

func (l *Ledger) acquire(ctx context.Context) error {
	if l.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.lockTimeout)
		defer cancel()
	}
	select {
	case l.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return ctx.Err()
	}
}

func (l *Ledger) release() {
	<-l.lock
}

func (l *Ledger) locked(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()
	return fn(l.db.WithContext(ctx))
}

// Register creates a zero-balance member or refreshes the display fields of
// an existing one. The balance and quota are never touched.
func (l *Ledger) Register(ctx context.Context, p Profile) (Outcome, error) {
	outcome := Created
	err := l.locked(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			found, err := exists(tx, p.ID)
			if err != nil {
				return err
			}
			if found {
				outcome = AlreadyExists
				err := tx.Model(&models.User{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
					"username":   p.Username,
					"first_name": p.FirstName,
					"last_name":  p.LastName,
				}).Error
				if err != nil {
					return fmt.Errorf("failed to update user %d: %w", p.ID, err)
				}
				return nil
			}

			user := models.User{
				ID:        p.ID,
				Username:  p.Username,
				FirstName: p.FirstName,
				LastName:  p.LastName,
				QuotaDate: models.EpochDate,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to create user %d: %w", p.ID, err)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (l *Ledger) Exists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := l.locked(ctx, func(db *gorm.DB) error {
		var err error
		found, err = exists(db, id)
		return err
	})
	return found, err
}

// FindByUsername resolves a handle (case-insensitive, without "@") to a
// member. Usernames are not unique in the store; the lowest id wins.
func (l *Ledger) FindByUsername(ctx context.Context, username string) (models.User, bool, error) {
	var user models.User
	var found bool
	username = strings.TrimPrefix(username, "@")
	if username == "" {
		return user, false, nil
	}
	err := l.locked(ctx, func(db *gorm.DB) error {
		res := db.Where("LOWER(username) = LOWER(?)", username).Order("id").Limit(1).Find(&user)
		if res.Error != nil {
			return fmt.Errorf("failed to look up username %q: %w", username, res.Error)
		}
		found = res.RowsAffected > 0
		return nil
	})
	return user, found, err
}

// Balance returns 0 for unknown ids; use Exists to tell the two apart.
func (l *Ledger) Balance(ctx context.Context, id int64) (int64, error) {
	var balance int64
	err := l.locked(ctx, func(db *gorm.DB) error {
		var err error
		balance, err = balanceOf(db, id)
		return err
	})
	return balance, err
}

// Award adds one unit to the recipient without any quota check.
func (l *Ledger) Award(ctx context.Context, id int64) (int64, error) {
	var balance int64
	err := l.locked(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			var err error
			balance, err = award(tx, id)
			return err
		})
	})
	return balance, err
}

func (l *Ledger) DailyQuota(ctx context.Context, id int64) (Quota, error) {
	var q Quota
	err := l.locked(ctx, func(db *gorm.DB) error {
		var err error
		q, err = quotaOf(db, id)
		return err
	})
	return q, err
}

func (l *Ledger) ResetDailyQuota(ctx context.Context, id int64, today string) error {
	return l.locked(ctx, func(db *gorm.DB) error {
		return resetQuota(db, id, today)
	})
}

func (l *Ledger) IncrementDailyQuota(ctx context.Context, id int64) error {
	return l.locked(ctx, func(db *gorm.DB) error {
		return incrementQuota(db, id)
	})
}

// Leaderboard sums balances per (first name, last name, username) and
// returns the top rows, highest first. Order between ties is unspecified.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	var rows []Standing
	err := l.locked(ctx, func(db *gorm.DB) error {
		err := db.Model(&models.User{}).
			Select("first_name, last_name, username, CAST(SUM(balance) AS BIGINT) AS total").
			Group("first_name, last_name, username").
			Order("total DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to query leaderboard: %w", err)
		}
		return nil
	})
	return rows, err
}

// Transfer gives one unit from sender to recipient if the sender still has
// quota for today. Reading, resetting and incrementing the quota together
// with the award happen in one critical section and one transaction.
func (l *Ledger) Transfer(ctx context.Context, senderID, recipientID int64) (Transfer, error) {
	result := Transfer{Limit: l.maxPerDay}
	err := l.locked(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			today := l.Today()

			q, err := quotaOf(tx, senderID)
			if err != nil {
				return err
			}
			count := q.Count
			if q.Date != today {
				if err := resetQuota(tx, senderID, today); err != nil {
					return err
				}
				count = 0
			}

			if l.maxPerDay > 0 && count >= l.maxPerDay {
				result.Status = QuotaExceeded
				result.Used = count
				return nil
			}

			balance, err := award(tx, recipientID)
			if err != nil {
				return err
			}
			if err := incrementQuota(tx, senderID); err != nil {
				return err
			}

			result.Status = Awarded
			result.Balance = balance
			result.Used = count + 1
			return nil
		})
	})
	if err != nil {
		return Transfer{}, err
	}
	return result, nil
}

func exists(db *gorm.DB, id int64) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user %d: %w", id, err)
	}
	return count > 0, nil
}

func balanceOf(db *gorm.DB, id int64) (int64, error) {
	var user models.User
	res := db.Select("balance").Where("id = ?", id).Limit(1).Find(&user)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to read balance of %d: %w", id, res.Error)
	}
	return user.Balance, nil
}

func award(db *gorm.DB, id int64) (int64, error) {
	res := db.Model(&models.User{}).Where("id = ?", id).Update("balance", gorm.Expr("balance + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to award user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("award to %d: %w", id, ErrUnknownUser)
	}
	return balanceOf(db, id)
}

func quotaOf(db *gorm.DB, id int64) (Quota, error) {
	var user models.User
	res := db.Select("coins_per_day", "quota_date").Where("id = ?", id).Limit(1).Find(&user)
	if res.Error != nil {
		return Quota{}, fmt.Errorf("failed to read quota of %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return Quota{}, fmt.Errorf("quota of %d: %w", id, ErrUnknownUser)
	}
	return Quota{Count: user.CoinsPerDay, Date: user.QuotaDate}, nil
}

func resetQuota(db *gorm.DB, id int64, today string) error {
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"coins_per_day": 0,
		"quota_date":    today,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to reset quota of %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reset quota of %d: %w", id, ErrUnknownUser)
	}
	return nil
}

func incrementQuota(db *gorm.DB, id int64) error {
	res := db.Model(&models.User{}).Where("id = ?", id).Update("coins_per_day", gorm.Expr("coins_per_day + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment quota of %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment quota of %d: %w", id, ErrUnknownUser)
	}
	return nil
}
