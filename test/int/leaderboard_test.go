package int

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
)

var _ = Describe("Leaderboard", func() {
	var admin User
	var leader1 User
	var leader2 User
	var team1 string
	var team2 string

	BeforeEach(func() {
		cleanupMongo()
		admin = registerUser(0, entity.RoleSuperadmin)
		leader1 = registerUser(1, entity.RoleTeamLeader)
		leader2 = registerUser(2, entity.RoleTeamLeader)
		team1 = createTeam(leader1, "Falcons")
		team2 = createTeam(leader2, "Eagles")
	})

	setRanking := func(teamID string, ranking int64) {
		resp, err := admin.R().SetBody(map[string]interface{}{
			"ranking": ranking,
		}).Put("/api/leaderboard/" + teamID)
		Expect(err).To(BeNil())
		Expect(resp.StatusCode()).To(Equal(200))
	}

	Specify("teams come back ranking descending", func() {
		setRanking(team1, 10)
		setRanking(team2, 25)

		resp, err := leader1.R().Get("/api/leaderboard")
		Expect(err).To(BeNil())
		Expect(resp.StatusCode()).To(Equal(200))

		var teams []struct {
			ID      string `json:"id"`
			Ranking int64  `json:"ranking"`
		}
		decode(resp, &teams)
		Expect(teams).To(HaveLen(2))
		Expect(teams[0].ID).To(Equal(team2))
		Expect(teams[1].ID).To(Equal(team1))
	})

	Specify("sad path - ranking write needs the superadmin role", func() {
		resp, err := leader1.R().SetBody(map[string]interface{}{
			"ranking": 99,
		}).Put("/api/leaderboard/" + team1)
		Expect(err).To(BeNil())
		Expect(resp).To(MatchBackendError(errs.ErrForbidden))
	})

	Specify("sad path - unknown team", func() {
		resp, err := admin.R().SetBody(map[string]interface{}{
			"ranking": 99,
		}).Put("/api/leaderboard/65b000000000000000000000")
		Expect(err).To(BeNil())
		Expect(resp).To(MatchBackendError(errs.ErrTeamNotFound))
	})

	Specify("sad path - listing requires authentication", func() {
		resp, err := client().R().Get("/api/leaderboard")
		Expect(err).To(BeNil())
		Expect(resp.StatusCode()).To(Equal(401))
	})
})
