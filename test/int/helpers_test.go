package int

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hackreg-backend/entity"
)

func envOrDefaultString(env, def string) string {
	if val, ok := os.LookupEnv(env); ok {
		return val
	}

	return def
}

var (
	baseURL  = envOrDefaultString("HACKREG_TEST_BASEURL", "http://localhost:5000")
	mongoURI = envOrDefaultString("MONGO_URI", "mongodb://localhost:27017")
)

func client() *resty.Client {
	return resty.New().SetBaseURL(baseURL)
}

func cleanupMongo() {
	m, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	Expect(err).To(BeNil())
	db := m.Database("hackreg")

	collections := []string{"users", "teams"}
	for _, v := range collections {
		_, err := db.Collection(v).DeleteMany(context.Background(), bson.M{})
		Expect(err).To(BeNil())
	}
}

type User struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	c            *resty.Client
}

func (u *User) R() *resty.Request {
	return u.c.R().SetHeader("Authorization", "Bearer "+u.Token)
}

func decode(resp *resty.Response, out interface{}) {
	Expect(json.Unmarshal(resp.Body(), out)).To(BeNil())
}

func registerUser(i int, role entity.Role) User {
	c := client()
	email := fmt.Sprintf("test%d@test.test", i)

	resp, err := c.R().SetBody(map[string]interface{}{
		"name":             fmt.Sprintf("Test User%d", i),
		"email":            email,
		"password":         "testtest",
		"phone":            fmt.Sprintf("99999%05d", i),
		"role":             string(role),
		"universityRollNo": fmt.Sprintf("2023%05d", i),
	}).Post("/api/auth/signup")
	Expect(err).To(BeNil())
	Expect(resp.StatusCode()).To(Equal(201))

	resp, err = c.R().SetBody(map[string]interface{}{
		"email":    email,
		"password": "testtest",
	}).Post("/api/auth/login")
	Expect(err).To(BeNil())
	Expect(resp.StatusCode()).To(Equal(200))

	var body struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
		UserID       string `json:"userId"`
	}
	decode(resp, &body)
	Expect(body.Token).NotTo(BeEmpty())
	Expect(body.UserID).NotTo(BeEmpty())

	return User{
		Token:        body.Token,
		RefreshToken: body.RefreshToken,
		UserID:       body.UserID,
		Email:        email,
		c:            c,
	}
}

func createTeam(u User, name string) string {
	resp, err := u.R().SetBody(map[string]interface{}{"name": name}).Post("/api/teams")
	Expect(err).To(BeNil())
	Expect(resp.StatusCode()).To(Equal(201))

	var body struct {
		TeamID string `json:"teamId"`
	}
	decode(resp, &body)
	Expect(body.TeamID).NotTo(BeEmpty())

	return body.TeamID
}
