package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/BolajiAkerele2013/Cookit/internal/auth"
	"github.com/BolajiAkerele2013/Cookit/internal/config"
	"github.com/BolajiAkerele2013/Cookit/internal/db"
	apperr "github.com/BolajiAkerele2013/Cookit/internal/errors"
	"github.com/BolajiAkerele2013/Cookit/internal/logging"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

// Fixture is the seed file layout.
type Fixture struct {
	Users []SeedUser `yaml:"users"`
	Ideas []SeedIdea `yaml:"ideas"`
}

// SeedUser is a user to sign up, with optional profile fields.
type SeedUser struct {
	Email     string   `yaml:"email"`
	Password  string   `yaml:"password"`
	Name      string   `yaml:"name"`
	Skills    []string `yaml:"skills"`
	Interests []string `yaml:"interests"`
	Portfolio *string  `yaml:"portfolio"`
}

// SeedIdea is an idea created by Owner, with the roles Owner assigns on it.
type SeedIdea struct {
	Owner           string     `yaml:"owner"`
	Name            string     `yaml:"name"`
	Description     string     `yaml:"description"`
	ProblemCategory string     `yaml:"problemCategory"`
	Solution        string     `yaml:"solution"`
	Visibility      string     `yaml:"visibility"`
	Roles           []SeedRole `yaml:"roles"`
}

// SeedRole is a role assignment. Amounts and dates are strings to keep them exact.
type SeedRole struct {
	Email            string `yaml:"email"`
	Role             string `yaml:"role"`
	EquityPercentage string `yaml:"equityPercentage"`
	DebtAmount       string `yaml:"debtAmount"`
	StartDate        string `yaml:"startDate"`
	EndDate          string `yaml:"endDate"`
}

func main() {
	path := flag.String("file", "cmd/seed/fixture.yaml", "seed fixture")
	flag.Parse()

	log.Println("Starting seed script...")

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open fixture: %v", err)
	}
	defer f.Close()

	fx, err := LoadFixture(f)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}

	ctx := context.Background()
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()
	log.Println("Connected to database")

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	credentials, err := auth.NewCredentialScheme(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("Failed to build credential scheme: %v", err)
	}

	s := newSeeder(store, credentials, logger)
	if err := s.Apply(ctx, fx); err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("Seed complete: %d users, %d ideas", len(fx.Users), len(fx.Ideas))
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// seeder writes fixtures through the services so every domain rule applies.
type seeder struct {
	users    repository.UserRepository
	identity service.AuthService
	profiles service.UserService
	ideas    service.IdeaService
	roles    service.RoleService
	log      *slog.Logger
}

func newSeeder(store *db.Handle, credentials auth.CredentialScheme, logger *slog.Logger) *seeder {
	userRepo := repository.NewUserRepository(store.DB())
	ideaRepo := repository.NewIdeaRepository(store.DB())
	roleRepo := repository.NewIdeaRoleRepository(store.DB())

	return &seeder{
		users:    userRepo,
		identity: service.NewAuthService(userRepo, auth.Base64Codec{}, credentials),
		profiles: service.NewUserService(userRepo, nil),
		ideas:    service.NewIdeaService(ideaRepo, roleRepo, nil),
		roles:    service.NewRoleService(ideaRepo, roleRepo, userRepo, nil),
		log:      logger,
	}
}

// Apply seeds users, then ideas and their roles. Existing users and ideas with the
// same owner and name are skipped, so a fixture can be applied more than once.
func (s *seeder) Apply(ctx context.Context, fx *Fixture) error {
	for _, u := range fx.Users {
		if err := s.seedUser(ctx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
	}
	for _, i := range fx.Ideas {
		if err := s.seedIdea(ctx, i); err != nil {
			return fmt.Errorf("idea %q: %w", i.Name, err)
		}
	}
	return nil
}

func (s *seeder) seedUser(ctx context.Context, u SeedUser) error {
	user, _, err := s.identity.SignUp(ctx, u.Email, u.Password, u.Name)
	if errors.Is(err, apperr.ErrEmailTaken) {
		s.log.Info("user exists, skipping", "email", u.Email)
		return nil
	}
	if err != nil {
		return err
	}

	if u.Skills != nil || u.Interests != nil || u.Portfolio != nil {
		_, err = s.profiles.UpdateProfile(ctx, user.ID, service.ProfilePatch{
			Skills:    u.Skills,
			Interests: u.Interests,
			Portfolio: u.Portfolio,
		})
	}
	return err
}

func (s *seeder) seedIdea(ctx context.Context, i SeedIdea) error {
	owner, err := s.users.FindByEmail(ctx, i.Owner)
	if err != nil {
		return fmt.Errorf("find owner %s: %w", i.Owner, err)
	}

	existing, err := s.ideas.ListIdeasFor(ctx, owner.ID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.OwnerID == owner.ID && e.Name == i.Name {
			s.log.Info("idea exists, skipping", "owner", i.Owner, "name", i.Name)
			return nil
		}
	}

	idea, err := s.ideas.CreateIdea(ctx, owner.ID, service.IdeaInput{
		Name:            i.Name,
		Description:     i.Description,
		ProblemCategory: i.ProblemCategory,
		Solution:        i.Solution,
		Visibility:      model.Visibility(i.Visibility),
	})
	if err != nil {
		return err
	}

	for _, r := range i.Roles {
		req, err := r.request()
		if err != nil {
			return fmt.Errorf("role for %s: %w", r.Email, err)
		}
		if _, err := s.roles.AddRole(ctx, idea.ID, owner.ID, r.Email, req); err != nil {
			return fmt.Errorf("role for %s: %w", r.Email, err)
		}
	}
	return nil
}

func (r SeedRole) request() (service.RoleRequest, error) {
	req := service.RoleRequest{Kind: model.RoleKind(r.Role)}
	var err error
	if req.EquityPercentage, err = optionalDecimal(r.EquityPercentage); err != nil {
		return req, err
	}
	if req.DebtAmount, err = optionalDecimal(r.DebtAmount); err != nil {
		return req, err
	}
	if req.StartDate, err = optionalDate(r.StartDate); err != nil {
		return req, err
	}
	if req.EndDate, err = optionalDate(r.EndDate); err != nil {
		return req, err
	}
	return req, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return &d, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}
