package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kinekixcc/kheladi-sub001/handlers"
	"github.com/kinekixcc/kheladi-sub001/middleware"
	"github.com/kinekixcc/kheladi-sub001/models"
)

// SetupRoutes mounts the full HTTP surface on the given router. Reads on
// tournaments (registration options, fee previews) are public; everything
// that acts on teams or invitations requires an authenticated user.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	invitationHandler *handlers.InvitationHandler,
	registrationHandler *handlers.RegistrationHandler,
	wizardHandler *handlers.WizardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/signup", authHandler.Register)
	router.Post("/auth/signin", authHandler.Login)

	router.Post("/fees/preview", registrationHandler.PreviewFees)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/registration-options", registrationHandler.GetRegistrationOptions)
		r.Get("/fees", registrationHandler.GetFeePreview)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/team-wizard", wizardHandler.StartWizard)
			r.Post("/team-wizard/validate", wizardHandler.ValidateStep)
			r.Post("/team-wizard/commit", wizardHandler.CommitWizard)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", teamHandler.GetTeamByID)
		r.Get("/{teamID}/members", teamHandler.ListMembers)
		r.Get("/{teamID}/ws", webSocketHandler.SubscribeTeam)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.CreateTeam)
			r.Put("/{teamID}", teamHandler.UpdateTeamDetails)
			r.Delete("/{teamID}", teamHandler.DeleteTeam)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)

			r.Post("/{teamID}/members/{userID}", teamHandler.AddMember)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
			r.Post("/{teamID}/leave", teamHandler.LeaveTeam)
			r.Post("/{teamID}/captain", teamHandler.TransferCaptaincy)

			r.Post("/{teamID}/invitations", invitationHandler.SendInvitation)
			r.Get("/{teamID}/invitations", invitationHandler.ListTeamInvitations)
		})
	})

	router.Route("/invitations", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", invitationHandler.ListMyInvitations)
		r.Post("/{invitationID}/accept", invitationHandler.AcceptInvitation)
		r.Post("/{invitationID}/decline", invitationHandler.DeclineInvitation)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))

		r.Delete("/invitations/expired", invitationHandler.PurgeExpired)
	})
}
