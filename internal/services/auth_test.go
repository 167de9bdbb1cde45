package services_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/internal/services"
	"github.com/querydesk/querydesk/internal/store"
	"github.com/querydesk/querydesk/internal/store/migrations"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

var _ = Describe("AuthService", func() {
	var (
		ctx  context.Context
		db   *sql.DB
		st   *store.Store
		auth *services.AuthService
	)

	createUser := func(name, password string, enabled bool) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		_, err = st.Users().Create(ctx, models.User{
			UserName:     name,
			PasswordHash: string(hash),
			Role:         models.UserRoleUser,
			IsEnabled:    enabled,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(store.DriverDuckDB, ":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		st = store.NewStore(db)

		auth, err = services.NewAuthService(st.Users(), "test-secret", time.Hour)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("Login", func() {
		// Given an enabled user
		// When they log in with the right password
		// Then a token carrying their name and role is issued
		It("should issue a token", func() {
			// Arrange
			createUser("ana", "s3cret!", true)

			// Act
			session, err := auth.Login(ctx, "ana", "s3cret!")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(session.User.UserName).To(Equal("ana"))
			Expect(session.User.LastLogin).NotTo(BeNil())
			Expect(session.ExpiresAt).To(BeTemporally("~", time.Now().Add(time.Hour), time.Minute))

			claims, err := auth.ValidateToken(session.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserName).To(Equal("ana"))
			Expect(claims.Role).To(Equal(models.UserRoleUser))

			stored, err := st.Users().GetByUserName(ctx, "ana")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.LastLogin).NotTo(BeNil())
		})

		It("should not tell unknown users from wrong passwords", func() {
			createUser("ana", "s3cret!", true)

			_, errUnknown := auth.Login(ctx, "bob", "s3cret!")
			_, errWrong := auth.Login(ctx, "ana", "nope")

			Expect(srvErrors.IsInvalidCredentialsError(errUnknown)).To(BeTrue())
			Expect(srvErrors.IsInvalidCredentialsError(errWrong)).To(BeTrue())
			Expect(errUnknown.Error()).To(Equal(errWrong.Error()))
		})

		It("should refuse disabled accounts", func() {
			createUser("ana", "s3cret!", false)

			_, err := auth.Login(ctx, "ana", "s3cret!")

			Expect(srvErrors.IsAccountDisabledError(err)).To(BeTrue())
		})

		It("should require both fields", func() {
			_, err := auth.Login(ctx, "ana", "")
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("ValidateToken", func() {
		It("should reject tokens signed with another secret", func() {
			createUser("ana", "s3cret!", true)
			other, err := services.NewAuthService(st.Users(), "other-secret", time.Hour)
			Expect(err).NotTo(HaveOccurred())
			session, err := other.Login(ctx, "ana", "s3cret!")
			Expect(err).NotTo(HaveOccurred())

			_, err = auth.ValidateToken(session.Token)

			Expect(err).To(HaveOccurred())
		})

		It("should reject expired tokens", func() {
			createUser("ana", "s3cret!", true)
			shortLived, err := services.NewAuthService(st.Users(), "test-secret", -time.Minute)
			Expect(err).NotTo(HaveOccurred())
			session, err := shortLived.Login(ctx, "ana", "s3cret!")
			Expect(err).NotTo(HaveOccurred())

			_, err = auth.ValidateToken(session.Token)

			Expect(err).To(HaveOccurred())
		})

		It("should reject garbage", func() {
			_, err := auth.ValidateToken("not.a.token")
			Expect(err).To(HaveOccurred())
		})
	})

	Context("SeedAdmin", func() {
		It("should create an admin once with a usable password", func() {
			// Act
			password, err := auth.SeedAdmin(ctx)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(password).To(HaveLen(12))
			Expect(password).To(MatchRegexp(`^[a-zA-Z0-9!@#$%]{12}$`))

			session, err := auth.Login(ctx, "admin", password)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.User.Role).To(Equal(models.UserRoleAdmin))

			again, err := auth.SeedAdmin(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(BeEmpty())
		})
	})

	It("should work without a configured secret", func() {
		createUser("ana", "s3cret!", true)
		random, err := services.NewAuthService(st.Users(), "", time.Hour)
		Expect(err).NotTo(HaveOccurred())

		session, err := random.Login(ctx, "ana", "s3cret!")
		Expect(err).NotTo(HaveOccurred())
		_, err = random.ValidateToken(session.Token)
		Expect(err).NotTo(HaveOccurred())
	})
})
