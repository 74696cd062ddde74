package db_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"newsroom/internal/db"
	"newsroom/internal/testutil"
)

type SeedTestSuite struct {
	suite.Suite
	d   *db.DB
	ctx context.Context
}

func (s *SeedTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.d = testutil.OpenDatabase(s.T())
}

func (s *SeedTestSuite) SetupTest() {
	testutil.ResetDatabase(s.T(), s.d)
	s.Require().NoError(s.d.EnsureSchema(s.ctx))
}

func (s *SeedTestSuite) countRows(model any) int64 {
	var n int64
	s.Require().NoError(s.d.Gorm.Model(model).Count(&n).Error)
	return n
}

func (s *SeedTestSuite) TestEnsureSchemaIsIdempotent() {
	// Already created once in SetupTest; repeat calls must not fail or
	// change the table set.
	s.Require().NoError(s.d.EnsureSchema(s.ctx))
	s.Require().NoError(s.d.EnsureSchema(s.ctx))

	rows, err := s.d.Gateway().Select(s.ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN
			('roles','permissions','role_permissions','users','user_roles','articles','activity_logs')`)
	s.Require().NoError(err)
	s.Require().Len(rows, 7)
}

func (s *SeedTestSuite) TestFreshSeed() {
	s.Require().NoError(s.d.SeedIfEmpty(s.ctx, "test-admin-password"))

	var roles []db.Role
	s.Require().NoError(s.d.Gorm.Order("name").Find(&roles).Error)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	s.Require().Equal([]string{
		"admin", "contributor", "editor", "journalist",
		"moderator", "registered_user", "super_admin",
	}, names)

	var users []db.User
	s.Require().NoError(s.d.Gorm.Find(&users).Error)
	s.Require().Len(users, 1)
	s.Require().Equal("admin", users[0].Username)
	s.Require().True(users[0].IsActive)
	s.Require().NoError(bcrypt.CompareHashAndPassword(
		[]byte(users[0].PasswordHash), []byte("test-admin-password")))

	// The super_admin role holds a grant for every permission row.
	var superAdmin db.Role
	s.Require().NoError(s.d.Gorm.Where("name = ?", "super_admin").First(&superAdmin).Error)

	permCount := s.countRows(&db.Permission{})
	s.Require().Positive(permCount)

	var grantCount int64
	s.Require().NoError(s.d.Gorm.Model(&db.RolePermission{}).
		Where("role_id = ?", superAdmin.ID).Count(&grantCount).Error)
	s.Require().Equal(permCount, grantCount)

	// And the seed user carries it.
	var link int64
	s.Require().NoError(s.d.Gorm.Model(&db.UserRole{}).
		Where("user_id = ? AND role_id = ?", users[0].ID, superAdmin.ID).Count(&link).Error)
	s.Require().EqualValues(1, link)
}

func (s *SeedTestSuite) TestSeedIsANoOpOnceAUserExists() {
	s.Require().NoError(s.d.SeedIfEmpty(s.ctx, "first-password"))

	var before db.User
	s.Require().NoError(s.d.Gorm.Where("username = ?", "admin").First(&before).Error)
	rolesBefore := s.countRows(&db.Role{})
	permsBefore := s.countRows(&db.Permission{})

	// Different password on purpose: a true no-op never re-hashes.
	s.Require().NoError(s.d.SeedIfEmpty(s.ctx, "second-password"))

	var after db.User
	s.Require().NoError(s.d.Gorm.Where("username = ?", "admin").First(&after).Error)
	s.Require().Equal(before.PasswordHash, after.PasswordHash)
	s.Require().EqualValues(1, s.countRows(&db.User{}))
	s.Require().Equal(rolesBefore, s.countRows(&db.Role{}))
	s.Require().Equal(permsBefore, s.countRows(&db.Permission{}))
}

func (s *SeedTestSuite) TestSeedGateTriggersBeforePasswordCheck() {
	s.Require().NoError(s.d.SeedIfEmpty(s.ctx, "test-admin-password"))

	// A missing password only matters when there is actually something to
	// seed; once a user exists the gate returns first.
	s.Require().NoError(s.d.SeedIfEmpty(s.ctx, ""))
}

func (s *SeedTestSuite) TestSeedRequiresPasswordOnEmptyDatabase() {
	err := s.d.SeedIfEmpty(s.ctx, "")
	s.Require().Error(err)
	s.Require().EqualValues(0, s.countRows(&db.User{}))
}

func (s *SeedTestSuite) TestConcurrentSeedersProduceOneAccount() {
	const seeders = 2
	var wg sync.WaitGroup
	errs := make([]error, seeders)

	start := make(chan struct{})
	for i := 0; i < seeders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = s.d.SeedIfEmpty(s.ctx, "test-admin-password")
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		s.Require().NoError(err, "seeder %d", i)
	}

	s.Require().EqualValues(1, s.countRows(&db.User{}))
	s.Require().EqualValues(7, s.countRows(&db.Role{}))

	// Unique constraints held: no duplicate role names or grant pairs.
	rows, err := s.d.Gateway().Select(s.ctx, `
		SELECT role_id, permission_id, COUNT(*) AS n
		FROM role_permissions
		GROUP BY role_id, permission_id
		HAVING COUNT(*) > 1`)
	s.Require().NoError(err)
	s.Require().Empty(rows)
}

func (s *SeedTestSuite) TestGatewayRoundTrip() {
	res, err := s.d.Gateway().Exec(s.ctx,
		`INSERT INTO activity_logs (action, detail) VALUES ($1, $2)`,
		"login", "seed account signed in")
	s.Require().NoError(err)
	s.Require().EqualValues(1, res.RowsAffected)

	row, err := s.d.Gateway().Get(s.ctx,
		`SELECT id, action, detail FROM activity_logs WHERE action = $1`, "login")
	s.Require().NoError(err)
	s.Require().NotNil(row)
	s.Require().IsType(int64(0), row["id"])
	s.Require().Equal("login", row["action"])

	missing, err := s.d.Gateway().Get(s.ctx,
		`SELECT id FROM activity_logs WHERE action = $1`, "never-happened")
	s.Require().NoError(err)
	s.Require().Nil(missing)
}

func TestSeedTestSuite(t *testing.T) {
	if testutil.DatabaseURL() == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database-backed suite")
	}
	suite.Run(t, new(SeedTestSuite))
}
