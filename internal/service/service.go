package service

import (
	"attendance-service/internal/analysis"
	"attendance-service/internal/attendance"
	"attendance-service/internal/lock"
	"attendance-service/internal/models"
	"attendance-service/internal/risk"
	"attendance-service/internal/session"
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Store is the record store the service reads and writes.
type Store interface {
	// Accounts
	Accounts(ctx context.Context) ([]models.Account, error)
	SaveAccount(ctx context.Context, account models.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Students
	Students(ctx context.Context) ([]models.Student, error)
	SaveStudent(ctx context.Context, student models.Student) error
	DeleteStudent(ctx context.Context, id string) error
	ImportStudents(ctx context.Context, students []models.Student) error

	// Attendance
	Events(ctx context.Context) ([]models.Event, error)
	SaveEvents(ctx context.Context, events []models.Event) error
	DeleteStudentEvents(ctx context.Context, studentID string) error
}

type Options struct {
	Policy        attendance.Policy
	CascadeDelete bool
	RiskThreshold int
	RiskLimit     int
	LockTTL       time.Duration
	Now           func() time.Time
	NewID         func() string
}

type Service struct {
	log      *slog.Logger
	store    Store
	locker   lock.Locker
	sessions *session.Manager
	analyst  *analysis.Analyst
	validate *validator.Validate
	opts     Options
}

func NewService(log *slog.Logger, store Store, locker lock.Locker, sessions *session.Manager, analyst *analysis.Analyst, opts Options) *Service {
	if opts.RiskThreshold <= 0 {
		opts.RiskThreshold = risk.DefaultThreshold
	}
	if opts.RiskLimit < 0 {
		opts.RiskLimit = 0
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if locker == nil {
		locker = lock.NewLocalLock()
	}

	return &Service{
		log:      log,
		store:    store,
		locker:   locker,
		sessions: sessions,
		analyst:  analyst,
		validate: validator.New(),
		opts:     opts,
	}
}

func (s *Service) today() models.Date {
	return models.DateOf(s.opts.Now())
}
