// Package httpadapter exposes the game over HTTP: classification
// lookups are public, everything that moves currency requires a bearer
// token.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"geohex/internal/app/auth"
	"geohex/internal/app/classify"
	"geohex/internal/app/drive"
	"geohex/internal/app/history"
	"geohex/internal/app/mine"
	"geohex/internal/app/ports"
	"geohex/internal/domain/mining"
	"geohex/internal/security"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"
)

// StatsProvider supplies the ops snapshot without the handler knowing
// the recorder's concrete shape.
type StatsProvider interface {
	SnapshotAny() any
}

type Handler struct {
	AuthUC     auth.UseCase
	ClassifyUC classify.UseCase
	MineUC     mine.UseCase
	DriveUC    drive.UseCase
	HistoryUC  history.UseCase
	Tokens     security.TokenManager
	Stats      StatsProvider
	Log        *zap.Logger
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(), accessLogMiddleware(h.Log))

	authGroup := s.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	s.GET("/hex/:cell", h.hexLookup)
	s.GET("/hex/:cell/classify", h.classifyArea)
	s.GET("/hex/:cell/classify/local", h.classifyLocal)

	s.POST("/mine", h.mine)
	s.POST("/spawn", h.spawn)
	s.POST("/drive/simulate", h.driveSimulate)
	s.POST("/drive/step", h.driveStep)
	s.GET("/history", h.history)

	if h.Stats != nil {
		s.GET("/ops/stats", h.opsStats)
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// claimRequest carries the target cell plus an optional GPS proof. The
// proof counts as present only when both coordinates are given.
type claimRequest struct {
	Cell           string   `json:"cell"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	AccuracyMeters float64  `json:"accuracyMeters"`
	GPSTimestamp   int64    `json:"gpsTimestamp"`
}

func (r claimRequest) proof() *mining.GPSProof {
	if r.Lat == nil || r.Lon == nil {
		return nil
	}
	return &mining.GPSProof{
		Lat:            *r.Lat,
		Lng:            *r.Lon,
		AccuracyMeters: r.AccuracyMeters,
		Timestamp:      time.Unix(r.GPSTimestamp, 0).UTC(),
	}
}

type simulateRequest struct {
	CenterCell string `json:"centerCell"`
}

type stepRequest struct {
	FromCell string `json:"fromCell"`
	ToCell   string `json:"toCell"`
}

type hexResponse struct {
	Cell     string   `json:"cell"`
	Category string   `json:"category"`
	Evidence []string `json:"evidence"`
}

func (h Handler) register(c context.Context, ctx *app.RequestContext) {
	var body credentialsRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	sess, err := h.AuthUC.Register(c, auth.RegisterRequest{Username: body.Username, Password: body.Password})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, sess)
}

func (h Handler) login(c context.Context, ctx *app.RequestContext) {
	var body credentialsRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	sess, err := h.AuthUC.Login(c, auth.LoginRequest{Username: body.Username, Password: body.Password})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, sess)
}

func (h Handler) hexLookup(c context.Context, ctx *app.RequestContext) {
	rec, err := h.ClassifyUC.Lookup(c, string(ctx.Param("cell")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, hexResponse{
		Cell:     rec.Cell,
		Category: string(rec.Category),
		Evidence: rec.Evidence,
	})
}

func (h Handler) classifyArea(c context.Context, ctx *app.RequestContext) {
	rec, err := h.ClassifyUC.ClassifyArea(c, string(ctx.Param("cell")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, rec)
}

func (h Handler) classifyLocal(c context.Context, ctx *app.RequestContext) {
	rec, err := h.ClassifyUC.ClassifyLocal(c, string(ctx.Param("cell")))
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, rec)
}

func (h Handler) mine(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body claimRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := h.MineUC.Mine(c, mine.Request{UserID: userID, Cell: body.Cell, GPS: body.proof()})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) spawn(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body claimRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := h.MineUC.Spawn(c, mine.Request{UserID: userID, Cell: body.Cell, GPS: body.proof()})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) driveSimulate(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body simulateRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := h.DriveUC.Simulate(c, drive.SimulateRequest{UserID: userID, CenterCell: body.CenterCell})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) driveStep(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	var body stepRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	res, err := h.DriveUC.Step(c, drive.StepRequest{UserID: userID, FromCell: body.FromCell, ToCell: body.ToCell})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, res)
}

func (h Handler) history(c context.Context, ctx *app.RequestContext) {
	userID, err := h.requireUser(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.HistoryUC.Execute(c, history.Request{
		UserID:       userID,
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) opsStats(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, h.Stats.SnapshotAny())
}

var ErrMissingToken = errors.New("missing bearer token")

func (h Handler) requireUser(ctx *app.RequestContext) (string, error) {
	header := strings.TrimSpace(string(ctx.GetHeader("Authorization")))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return h.Tokens.Parse(strings.TrimSpace(token))
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrMissingToken):
		writeErrorBody(ctx, consts.StatusUnauthorized, "missing_token", err.Error())
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, security.ErrSecretMissing):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_token", "invalid token")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorBody(ctx, consts.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrUsernameTaken):
		writeErrorBody(ctx, consts.StatusConflict, "username_taken", err.Error())
	case errors.Is(err, auth.ErrInvalidRequest),
		errors.Is(err, classify.ErrInvalidRequest),
		errors.Is(err, mine.ErrInvalidRequest),
		errors.Is(err, drive.ErrInvalidRequest),
		errors.Is(err, history.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrUpstreamUnavailable):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "upstream_unavailable", "map data upstream unavailable")
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func accessLogMiddleware(log *zap.Logger) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		if log != nil {
			log.Info("http request",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("elapsed", time.Since(start)))
		}
	}
}
