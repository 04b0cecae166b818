package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"hackreg-backend/entity"
	"hackreg-backend/errs"
	"hackreg-backend/events"
	"hackreg-backend/log"
)

type leaderboardHandler struct {
	cTeams *mongo.Collection
}

// List returns every team in ranking order. Ties keep store order.
func (h *leaderboardHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	cursor, err := h.cTeams.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"ranking": -1}))
	if err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	teams := make([]*entity.Team, 0)
	if err := cursor.All(ctx, &teams); err != nil {
		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	return c.JSON(http.StatusOK, teams)
}

type setRankingRequest struct {
	Ranking int64 `json:"ranking"`
}

func (h *leaderboardHandler) SetRanking(c echo.Context) error {
	teamID, err := primitive.ObjectIDFromHex(c.Param("teamId"))
	if err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	req := &setRankingRequest{}
	if err := c.Bind(req); err != nil {
		return fail(c, errs.ErrInvalidID)
	}

	team := &entity.Team{}
	err = h.cTeams.FindOneAndUpdate(
		c.Request().Context(),
		bson.M{"_id": teamID},
		bson.M{"$set": bson.M{"ranking": req.Ranking}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fail(c, errs.ErrTeamNotFound)
		}

		log.Logger.Error("database error", zap.Error(err))
		return fail(c, errs.ErrDatabase)
	}

	err = events.PublishLeaderboard(&events.LeaderboardEvent{
		Type:    events.LRanking,
		TeamID:  teamID.Hex(),
		Ranking: req.Ranking,
	})
	if err != nil {
		log.Logger.Error("queue error", zap.Error(err))
		return fail(c, errs.ErrQueue)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Ranking updated",
		"team":    team,
	})
}

// Live streams ranking and payment changes as server-sent events.
func (h *leaderboardHandler) Live(c echo.Context) error {
	ch, err := events.ConsumeLeaderboard(c.Request().Context())
	if err != nil {
		log.Logger.Error("queue error", zap.Error(err))
		return fail(c, errs.ErrQueue)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case ev := <-ch:
			body, err := json.Marshal(ev)
			if err != nil {
				log.Logger.Error("encode error", zap.Error(err))
				continue
			}

			if _, err := fmt.Fprintf(res, "data: %s\n\n", body); err != nil {
				log.Logger.Debug("sending failed", zap.Error(err))
				return nil
			}
			res.Flush()
		}
	}
}

func NewLeaderboardHandler(client *mongo.Client) *leaderboardHandler {
	return &leaderboardHandler{
		cTeams: client.Database(databaseName).Collection("teams"),
	}
}
