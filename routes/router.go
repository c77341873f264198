package routes

import (
	"Hacknox/controllers"
	"Hacknox/middlewares"
	"Hacknox/models"
	"Hacknox/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), middlewares.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", controllers.Healthz)

	apiV1 := r.Group("/api/v1")
	{
		// --- auth & self ---
		apiV1.POST("/signup", controllers.Signup)
		apiV1.POST("/login", controllers.Login)
		apiV1.POST("/logout", middlewares.JWTTryAuthMiddleware(), controllers.Logout)
		apiV1.POST("/verify-email", controllers.VerifyEmail)
		apiV1.POST("/verify-email/resend", controllers.ResendVerification)
		apiV1.GET("/files", controllers.DownloadFile)

		self := apiV1.Group("")
		self.Use(middlewares.JWTAuthMiddleware())
		{
			self.GET("/me", controllers.GetMe)
			self.POST("/user/edit", controllers.EditProfile)
			self.PATCH("/settings/password", controllers.ChangePassword)
			self.PATCH("/settings/email-preferences", controllers.UpdateEmailPreferences)
		}

		// --- participant ---
		participant := middlewares.RoleAuthMiddleware(models.RoleParticipant)
		teamRoutes := apiV1.Group("/teams")
		teamRoutes.Use(middlewares.JWTAuthMiddleware(), participant)
		{
			teamRoutes.POST("", middlewares.ResolveHackathon(), controllers.CreateTeam)
			teamRoutes.POST("/join", middlewares.ResolveHackathon(), controllers.JoinTeam)
			teamRoutes.POST("/accept-invite", middlewares.ResolveHackathon(), controllers.AcceptInvite)
			teamRoutes.POST("/invite", middlewares.RequireParticipantScope(false), controllers.InviteMember)
			teamRoutes.PATCH("/update", middlewares.RequireParticipantScope(false), controllers.UpdateTeam)
			teamRoutes.DELETE("/:id/member/remove", middlewares.RequireParticipantScope(false), controllers.RemoveMember)
			teamRoutes.GET("/me", middlewares.RequireParticipantScope(false), controllers.GetMyTeam)
		}

		submissionRoutes := apiV1.Group("/submissions")
		submissionRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			submissionRoutes.POST("", middlewares.BodyLimit(services.MaxUploadBytes()), middlewares.RequireParticipantScope(false), controllers.SaveSubmission)
			submissionRoutes.PUT("/:id/finalize", middlewares.RequireParticipantScope(false), controllers.FinalizeSubmission)
			submissionRoutes.PATCH("/:id", middlewares.RequireParticipantScope(false), controllers.UpdateSubmission)
			submissionRoutes.GET("/me", middlewares.RequireParticipantScope(false), controllers.GetMySubmission)
		}

		notificationRoutes := apiV1.Group("/notifications")
		notificationRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleParticipant, models.RoleJudge))
		{
			notificationRoutes.GET("", middlewares.RequireAudienceScope(true), controllers.ListNotifications)
			notificationRoutes.POST("/:id/read", controllers.MarkNotificationRead)
		}

		// --- judge ---
		judgeRoutes := apiV1.Group("/judge")
		judgeRoutes.Use(middlewares.JWTAuthMiddleware())
		{
			judgeRoutes.GET("/assignments", middlewares.RequireJudgeScope(true), controllers.JudgeAssignments)
			judgeRoutes.GET("/dashboard", middlewares.RequireJudgeScope(false), controllers.JudgeDashboard)
			judgeRoutes.GET("/submission/:teamId", middlewares.RequireJudgeScope(false), controllers.JudgeSubmission)
			judgeRoutes.POST("/evaluations/:teamId/draft", middlewares.RequireJudgeScope(false), controllers.SaveEvaluationDraft)
			judgeRoutes.POST("/evaluations/:teamId/submit", middlewares.RequireJudgeScope(false), controllers.SubmitEvaluation)
			judgeRoutes.PUT("/evaluations/:teamId", middlewares.RequireJudgeScope(false), controllers.UpdateEvaluation)
		}

		// --- admin ---
		admin := apiV1.Group("/admin")
		admin.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			admin.POST("/hackathons", controllers.CreateHackathon)
			admin.GET("/hackathons", controllers.ListMyHackathons)
			admin.GET("/audit-logs", middlewares.RequireAdminScope(), controllers.AdminAuditLogs)

			owned := admin.Group("/hackathons/:id")
			owned.Use(middlewares.RequireHackathonOwner("id"))
			{
				owned.GET("", controllers.GetHackathon)
				owned.PATCH("", controllers.UpdateHackathon)
				owned.DELETE("", controllers.DeleteHackathon)
				owned.POST("/owners", controllers.AddHackathonOwner)
			}

			scoped := admin.Group("")
			scoped.Use(middlewares.RequireHackathonOwner(""))
			{
				scoped.POST("/judges", controllers.AdminCreateJudge)
				scoped.GET("/judges", controllers.AdminListJudges)
				scoped.DELETE("/judges/:judgeId", controllers.AdminRemoveJudge)

				scoped.GET("/teams", controllers.AdminListTeams)
				scoped.PATCH("/teams/:teamId/verify", controllers.AdminVerifyTeam)
				scoped.DELETE("/teams/:teamId", controllers.AdminDeleteTeam)

				scoped.GET("/assignments", controllers.AdminListAssignments)
				scoped.POST("/assignments", controllers.AdminAssignJudges)
				scoped.POST("/assignments/reassign", controllers.AdminReassignJudge)
				scoped.POST("/assignments/auto-balance", controllers.AdminAutoBalance)

				scoped.GET("/submissions", controllers.AdminListSubmissions)
				scoped.PATCH("/submissions/:submissionId/status", controllers.AdminUpdateSubmissionStatus)

				scoped.GET("/evaluations", controllers.AdminListEvaluations)
				scoped.PATCH("/evaluations/:evaluationId/lock", controllers.AdminLockEvaluation)

				scoped.POST("/scoring/aggregate", controllers.AdminAggregateScores)
				scoped.POST("/scoring/compute", controllers.AdminComputeLeaderboard)
				scoped.GET("/leaderboard", controllers.AdminGetLeaderboard)
				scoped.PATCH("/leaderboard/publish", controllers.AdminPublishLeaderboard)

				scoped.POST("/announcements", controllers.AdminCreateAnnouncement)
				scoped.GET("/announcements", controllers.AdminListAnnouncements)
				scoped.PUT("/announcements/:announcementId", controllers.AdminUpdateAnnouncement)
				scoped.DELETE("/announcements/:announcementId", controllers.AdminDeleteAnnouncement)
				scoped.POST("/announcements/:announcementId/send", controllers.AdminSendAnnouncement)
				scoped.POST("/announcements/:announcementId/schedule", controllers.AdminScheduleAnnouncement)

				scoped.GET("/analytics", controllers.AdminAnalytics)
				scoped.GET("/export/:resource", controllers.AdminExport)
			}
		}

		// --- public ---
		public := apiV1.Group("/public")
		{
			public.GET("/leaderboard", middlewares.ResolveHackathon(), controllers.PublicLeaderboard)
			public.GET("/hackathons", controllers.ListPublicHackathons)
			public.GET("/hackathons/active", controllers.ListActiveHackathons)
			public.GET("/hackathons/:id", controllers.GetPublicHackathon)
		}
	}

	return r
}
