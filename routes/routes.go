package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/tippliga/tippliga/handlers"
	"github.com/tippliga/tippliga/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	rankingHandler *handlers.RankingHandler,
	predictionHandler *handlers.PredictionHandler,
	bracketHandler *handlers.BracketHandler,
	leagueHandler *handlers.LeagueHandler,
	bonusHandler *handlers.BonusHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Публичные маршруты для просмотра
	router.Route("/matches", func(r chi.Router) {
		r.Get("/knockout", matchHandler.ListKnockoutMatchesHandler)
		r.Get("/group/{group}", matchHandler.ListGroupMatchesHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
	})

	router.Route("/standings", func(r chi.Router) {
		r.Get("/", standingsHandler.AllGroupStandingsHandler)
		r.Get("/{group}", standingsHandler.GroupStandingsHandler)
	})

	router.Route("/ranking", func(r chi.Router) {
		r.Get("/", rankingHandler.GlobalRankingHandler)
		r.Get("/leagues/{leagueID}", rankingHandler.LeagueRankingHandler)
	})

	// Маршруты игроков (нужен валидный токен)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Post("/matches/{matchID}/predictions", predictionHandler.SubmitPredictionHandler)
		r.Get("/predictions", predictionHandler.ListMyPredictionsHandler)

		r.Post("/brackets", bracketHandler.SubmitBracketHandler)
		r.Get("/brackets", bracketHandler.GetMyBracketHandler)

		r.Post("/leagues/{leagueID}/join", leagueHandler.JoinLeagueHandler)
		r.Get("/leagues/{leagueID}/participants", leagueHandler.ListParticipantsHandler)

		r.Get("/bonus-questions", bonusHandler.ListQuestionsHandler)
		r.Post("/bonus-questions/{questionID}/answers", bonusHandler.SubmitAnswerHandler)
	})

	// Защищенные маршруты только для администраторов
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.RequireAdmin)

		r.Post("/matches/{matchID}/finish", matchHandler.FinishMatchHandler)
		r.Patch("/matches/{matchID}", matchHandler.UpdateMatchHandler)
		r.Post("/knockout/seed", matchHandler.SeedKnockoutHandler)
		r.Post("/knockout/reset", matchHandler.ResetKnockoutHandler)
		r.Post("/sync", matchHandler.ForceSyncHandler)
		r.Post("/brackets/recalculate", matchHandler.RecalculateBracketsHandler)
		r.Post("/teams/{team}/flag", matchHandler.UploadTeamFlagHandler)

		r.Post("/leagues", leagueHandler.CreateLeagueHandler)
		r.Delete("/leagues/{leagueID}", leagueHandler.DeleteLeagueHandler)
		r.Put("/leagues/{leagueID}/participants/{userID}/blocked", leagueHandler.SetParticipantBlockedHandler)
		r.Post("/leagues/{leagueID}/participants/{userID}/extra-points", leagueHandler.AssignExtraPointsHandler)

		r.Post("/bonus-questions", bonusHandler.CreateQuestionHandler)
		r.Post("/bonus-questions/{questionID}/resolve", bonusHandler.ResolveQuestionHandler)
	})

	// WebSocket-поток событий сетки
	router.Get("/ws/bracket", webSocketHandler.ServeWs)
}
