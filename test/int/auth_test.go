package int

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	jwt2 "hackreg-backend/jwt"
)

var key = []byte(envOrDefaultString("HACKREG_JWT_KEY", "test-key"))

var _ = Describe("Auth", func() {
	c := client()

	BeforeEach(func() {
		cleanupMongo()
	})

	Describe("Signup", func() {
		Specify("happy path", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Test User",
				"email":            "test@test.test",
				"password":         "testtest",
				"phone":            "9999900000",
				"universityRollNo": "202300001",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(201))

			var body struct {
				UserID string `json:"userId"`
			}
			decode(resp, &body)
			Expect(body.UserID).NotTo(BeEmpty())
		})

		Specify("sad path - single word name", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Test",
				"email":            "test@test.test",
				"password":         "testtest",
				"universityRollNo": "202300001",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrNameFormat))
		})

		Specify("sad path - wrong email", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Test User",
				"email":            "test-test.test.test",
				"password":         "testtest",
				"universityRollNo": "202300001",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrEmailAddressFormat))
		})

		Specify("sad path - short password", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Test User",
				"email":            "test@test.test",
				"password":         "short",
				"universityRollNo": "202300001",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrPasswordLength))
		})

		Specify("sad path - missing roll number", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"name":     "Test User",
				"email":    "test@test.test",
				"password": "testtest",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrRollNoRequired))
		})

		Specify("sad path - duplicate email", func() {
			registerUser(0, entity.RoleUser)

			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Test User",
				"email":            "test0@test.test",
				"password":         "testtest",
				"universityRollNo": "202399999",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrAlreadyExists))
		})

		Specify("sad path - duplicate roll number", func() {
			registerUser(0, entity.RoleUser)

			resp, err := c.R().SetBody(map[string]interface{}{
				"name":             "Other User",
				"email":            "other@test.test",
				"password":         "testtest",
				"universityRollNo": "202300000",
			}).Post("/api/auth/signup")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrAlreadyExists))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			registerUser(0, entity.RoleUser)
		})

		Specify("happy path", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"email":    "test0@test.test",
				"password": "testtest",
			}).Post("/api/auth/login")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			var body struct {
				Token        string `json:"token"`
				RefreshToken string `json:"refreshToken"`
				UserID       string `json:"userId"`
				Role         string `json:"role"`
			}
			decode(resp, &body)
			Expect(body.Role).To(Equal(string(entity.RoleUser)))

			at, err := jwt.ParseWithClaims(body.Token, &jwt2.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
				return key, nil
			})
			Expect(err).To(BeNil())
			claims, ok := at.Claims.(*jwt2.AccessClaims)
			Expect(ok).To(BeTrue())
			Expect(claims.UserID).To(Equal(body.UserID))
			Expect(claims.Role).To(Equal(entity.RoleUser))
			Expect(claims.ExpiresAt).To(Satisfy(func(t int64) bool { return time.Now().Unix() < t }))
		})

		Specify("sad path - unknown email", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"email":    "nobody@test.test",
				"password": "testtest",
			}).Post("/api/auth/login")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrUserNotFound))
		})

		Specify("sad path - wrong password", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"email":    "test0@test.test",
				"password": "wrongpass",
			}).Post("/api/auth/login")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrInvalidCredentials))
		})
	})

	Describe("Refresh", func() {
		Specify("happy path", func() {
			user := registerUser(0, entity.RoleUser)

			resp, err := c.R().SetBody(map[string]interface{}{
				"token": user.RefreshToken,
			}).Post("/api/auth/refresh")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			var body struct {
				Token string `json:"token"`
			}
			decode(resp, &body)
			Expect(body.Token).NotTo(BeEmpty())
		})

		Specify("sad path - garbage token", func() {
			resp, err := c.R().SetBody(map[string]interface{}{
				"token": "garbage",
			}).Post("/api/auth/refresh")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrJWT))
		})
	})
})
