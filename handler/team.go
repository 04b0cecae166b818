package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/jwt"
	"hackreg-backend/log"
)

type teamHandler struct {
	cUsers *mongo.Collection
	cTeams *mongo.Collection
}

type createTeamRequest struct {
	Name string `json:"name"`
}

func (h *teamHandler) CreateTeam(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	req := &createTeamRequest{}
	if err := c.Bind(req); err != nil || req.Name == "" {
		return fail(c, errs.ErrTeamNameRequired)
	}

	leaderID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	ctx := c.Request().Context()

	// Name uniqueness is application-level only; concurrent creates can race.
	err = h.cTeams.FindOne(ctx, bson.M{"name": req.Name}).Err()
	if err == nil {
		return fail(c, errs.ErrTeamNameTaken)
	}
	if err != mongo.ErrNoDocuments {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	err = h.cTeams.FindOne(ctx, bson.M{"leader_id": leaderID}).Err()
	if err == nil {
		return fail(c, errs.ErrHasTeam)
	}
	if err != mongo.ErrNoDocuments {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	team := &entity.Team{
		ID:       primitive.NewObjectID(),
		Name:     req.Name,
		LeaderID: leaderID,
		Members:  []primitive.ObjectID{leaderID},
		Ranking:  0,
		Payment: entity.Payment{
			Status:      entity.PaymentIncomplete,
			LastUpdated: time.Now(),
		},
	}

	_, err = h.cTeams.InsertOne(ctx, team)
	if err != nil {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	_, err = h.cUsers.UpdateByID(ctx, leaderID, bson.M{"$set": bson.M{"team_id": team.ID}})
	if err != nil {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Team created successfully",
		"teamId":  team.ID.Hex(),
	})
}

type memberCandidate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type addMembersRequest struct {
	TeamID  string            `json:"teamId"`
	Members []memberCandidate `json:"members"`
}

func (h *teamHandler) AddMembers(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	req := &addMembersRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	teamID, err := primitive.ObjectIDFromHex(req.TeamID)
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	ctx := c.Request().Context()

	team := &entity.Team{}
	err = h.cTeams.FindOne(ctx, bson.M{"_id": teamID}).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	if team.LeaderID.Hex() != claims.UserID {
		return fail(c, errs.ErrNotLeader)
	}

	if len(team.Members)+len(req.Members) > entity.MaxTeamSize {
		return fail(c, errs.ErrTeamFull)
	}

	leader := &entity.User{}
	err = h.cUsers.FindOne(ctx, bson.M{"_id": team.LeaderID}).Decode(leader)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	// Resolve every candidate before touching the store, so a conflict leaves
	// it unchanged. Repeated emails in one request resolve once; otherwise the
	// second insert would trip the unique index after the team document
	// already listed both IDs.
	existing := make([]primitive.ObjectID, 0, len(req.Members))
	provision := make([]*entity.User, 0, len(req.Members))
	seen := make(map[string]struct{}, len(req.Members))
	for _, m := range req.Members {
		if _, ok := seen[m.Email]; ok {
			continue
		}
		seen[m.Email] = struct{}{}

		u := &entity.User{}
		err := h.cUsers.FindOne(ctx, bson.M{"email": m.Email}).Decode(u)
		if err == mongo.ErrNoDocuments {
			provision = append(provision, &entity.User{
				ID:       primitive.NewObjectID(),
				Name:     m.Name,
				Email:    m.Email,
				Phone:    m.Phone,
				Password: leader.Password, // placeholder credential, reset later
				Role:     entity.RoleUser,
				College:  leader.College,
				TeamID:   &team.ID,
			})
			continue
		}
		if err != nil {
			logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}

		if u.TeamID != nil && *u.TeamID != team.ID {
			return fail(c, errs.ErrMemberHasTeam)
		}

		if team.HasMember(u.ID) {
			continue
		}

		existing = append(existing, u.ID)
	}

	members := team.Members
	for _, id := range existing {
		members = append(members, id)
	}
	for _, u := range provision {
		members = append(members, u.ID)
	}

	// Team document first, member documents after. No compensation on partial
	// failure.
	_, err = h.cTeams.UpdateByID(ctx, team.ID, bson.M{"$set": bson.M{"members": members}})
	if err != nil {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	for _, u := range provision {
		if _, err := h.cUsers.InsertOne(ctx, u); err != nil {
			logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}
	}
	for _, id := range existing {
		if _, err := h.cUsers.UpdateByID(ctx, id, bson.M{"$set": bson.M{"team_id": team.ID}}); err != nil {
			logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}
	}

	team.Members = members
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Members added successfully",
		"team":    team,
	})
}

type memberSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Phone string             `json:"phone"`
}

func (h *teamHandler) memberSummaries(c echo.Context, ids []primitive.ObjectID) ([]memberSummary, error) {
	cursor, err := h.cUsers.Find(c.Request().Context(), bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	users := make([]*entity.User, 0, len(ids))
	if err := cursor.All(c.Request().Context(), &users); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	// Preserve member-list order.
	summaries := make([]memberSummary, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		summaries = append(summaries, memberSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone})
	}

	return summaries, nil
}

func (h *teamHandler) GetMyTeam(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fail(c, errs.ErrJWT)
	}

	team := &entity.Team{}
	err = h.cTeams.FindOne(c.Request().Context(), bson.M{"members": userID}).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrNoTeam)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	members, err := h.memberSummaries(c, team.Members)
	if err != nil {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"team":    team,
		"members": members,
	})
}

func (h *teamHandler) GetTeam(c echo.Context) error {
	teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	team := &entity.Team{}
	err = h.cTeams.FindOne(c.Request().Context(), bson.M{"_id": teamID}).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{"team": team})
}

type renameTeamRequest struct {
	Name string `json:"name"`
}

func (h *teamHandler) RenameTeam(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	req := &renameTeamRequest{}
	if err := c.Bind(req); err != nil || req.Name == "" {
		return fail(c, errs.ErrTeamNameRequired)
	}

	ctx := c.Request().Context()

	team := &entity.Team{}
	err = h.cTeams.FindOne(ctx, bson.M{"_id": teamID}).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	if team.LeaderID.Hex() != claims.UserID {
		return fail(c, errs.ErrNotLeader)
	}

	err = h.cTeams.FindOne(ctx, bson.M{"name": req.Name, "_id": bson.M{"$ne": teamID}}).Err()
	if err == nil {
		return fail(c, errs.ErrTeamNameTaken)
	}
	if err != mongo.ErrNoDocuments {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	_, err = h.cTeams.UpdateByID(ctx, teamID, bson.M{"$set": bson.M{"name": req.Name}})
	if err != nil {
		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Team renamed successfully"})
}

type updateMemberRequest struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	College         string `json:"college"`
	CodeforceHandle string `json:"codeforceHandle"`
}

// UpdateMember lets a leader edit the profile of someone on their team.
// Empty fields are left untouched.
func (h *teamHandler) UpdateMember(c echo.Context) error {
	claims, ok := jwt.GetClaims(c)
	if !ok {
		return fail(c, errs.ErrJWT)
	}
	logger := log.Logger.With(zap.String("userID", claims.UserID))

	memberID, err := primitive.ObjectIDFromHex(c.Param("memberId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	req := &updateMemberRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	ctx := c.Request().Context()

	member := &entity.User{}
	err = h.cUsers.FindOne(ctx, bson.M{"_id": memberID}).Decode(member)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrUserNotFound)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	if member.TeamID == nil {
		return fail(c, errs.ErrForbidden)
	}

	team := &entity.Team{}
	err = h.cTeams.FindOne(ctx, bson.M{"_id": *member.TeamID}).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrForbidden)
		}

		logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	if team.LeaderID.Hex() != claims.UserID || !team.HasMember(memberID) {
		return fail(c, errs.ErrForbidden)
	}

	set := bson.M{}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.College != "" {
		set["college"] = req.College
	}
	if req.CodeforceHandle != "" {
		set["codeforce_handle"] = req.CodeforceHandle
	}

	if len(set) > 0 {
		_, err = h.cUsers.UpdateByID(ctx, memberID, bson.M{"$set": set})
		if err != nil {
			logger.Error("database error", zap.Error(err))
			return fail(c, errs.ErrDatabase)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Member updated successfully"})
}

func NewTeamHandler(client *mongo.Client) *teamHandler {
	return &teamHandler{
		cUsers: client.Database(databaseName).Collection("users"),
		cTeams: client.Database(databaseName).Collection("teams"),
	}
}
