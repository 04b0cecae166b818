package int

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
)

var _ = Describe("Superadmin", func() {
	var admin User
	var leader User
	var teamID string

	BeforeEach(func() {
		cleanupMongo()
		admin = registerUser(0, entity.RoleSuperadmin)
		leader = registerUser(1, entity.RoleTeamLeader)
		teamID = createTeam(leader, "Falcons")
	})

	Describe("Profile", func() {
		Specify("happy path", func() {
			resp, err := admin.R().Get("/api/superadmin/profile")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			var body struct {
				Email string `json:"email"`
			}
			decode(resp, &body)
			Expect(body.Email).To(Equal(admin.Email))
		})

		Specify("update keeps untouched fields", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"name": "Renamed Admin",
			}).Put("/api/superadmin/profile")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			var body struct {
				User struct {
					Name  string `json:"name"`
					Email string `json:"email"`
				} `json:"user"`
			}
			decode(resp, &body)
			Expect(body.User.Name).To(Equal("Renamed Admin"))
			Expect(body.User.Email).To(Equal(admin.Email))
		})
	})

	Describe("Users CRUD", func() {
		Specify("list is superadmin only", func() {
			resp, err := leader.R().Get("/api/superadmin/users")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrForbidden))

			resp, err = admin.R().Get("/api/superadmin/users")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))
		})

		Specify("create and delete a user", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"name":             "Created User",
				"email":            "created@test.test",
				"password":         "testtest",
				"role":             string(entity.RoleUser),
				"universityRollNo": "202309999",
			}).Post("/api/superadmin/users")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(201))

			var body struct {
				User struct {
					ID string `json:"id"`
				} `json:"user"`
			}
			decode(resp, &body)
			Expect(body.User.ID).NotTo(BeEmpty())

			resp, err = admin.R().Delete("/api/superadmin/users/" + body.User.ID)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			resp, err = admin.R().Delete("/api/superadmin/users/" + body.User.ID)
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrUserNotFound))
		})

		Specify("sad path - update onto a taken email", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"email": admin.Email,
			}).Put("/api/superadmin/users/" + leader.UserID)
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrAlreadyExists))
		})

		Specify("sad path - invalid role on update", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"role": "Wizard",
			}).Put("/api/superadmin/users/" + leader.UserID)
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrInvalidRole))
		})
	})

	Describe("Teams", func() {
		Specify("delete bypasses team invariants", func() {
			resp, err := admin.R().Delete("/api/superadmin/teams/" + teamID)
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			resp, err = admin.R().Delete("/api/superadmin/teams/" + teamID)
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrTeamNotFound))
		})

		Specify("payment status happy path", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"status": string(entity.PaymentAccepted),
			}).Put("/api/superadmin/teams/" + teamID + "/payment")
			Expect(err).To(BeNil())
			Expect(resp.StatusCode()).To(Equal(200))

			var body struct {
				Team struct {
					Payment struct {
						Status      string `json:"status"`
						LastUpdated string `json:"lastUpdated"`
					} `json:"payment"`
				} `json:"team"`
			}
			decode(resp, &body)
			Expect(body.Team.Payment.Status).To(Equal(string(entity.PaymentAccepted)))
			Expect(body.Team.Payment.LastUpdated).NotTo(BeEmpty())
		})

		Specify("sad path - status outside the enum", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"status": "paid",
			}).Put("/api/superadmin/teams/" + teamID + "/payment")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrInvalidPaymentStatus))
		})

		Specify("sad path - payment for unknown team", func() {
			resp, err := admin.R().SetBody(map[string]interface{}{
				"status": string(entity.PaymentPending),
			}).Put("/api/superadmin/teams/65b000000000000000000000/payment")
			Expect(err).To(BeNil())
			Expect(resp).To(MatchBackendError(errs.ErrTeamNotFound))
		})
	})
})
