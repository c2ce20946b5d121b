package main

import (
	"net/http"

	"github.com/coursehub/coursehub-api/internal/api"
	apiMiddleware "github.com/coursehub/coursehub-api/internal/api/middleware"
	"github.com/coursehub/coursehub-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the router with every route and its middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)

	authHandler := api.NewAuthHandler(app.authenticator, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.passwordResetService, app.logger)
	courseHandler := api.NewCourseHandler(app.courseService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", authHandler.Token)
		r.Post("/auth/introspect", authHandler.Introspect)

		r.Post("/user", userHandler.Register)
		r.Post("/user/forgot-password", userHandler.ForgotPassword)
		r.Post("/user/reset-password", userHandler.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/user/myinfo", userHandler.MyInfo)
			r.Get("/user/{id}", userHandler.GetUser)
			r.Put("/user/{id}", userHandler.UpdateUser)
			r.Delete("/user/{id}", userHandler.DeleteUser)
			r.Post("/user/{id}/assign-role", userHandler.AssignRole)

			r.Get("/courses", courseHandler.ListApproved)
			r.Post("/courses", courseHandler.CreateCourse)
			r.Get("/courses/mine", courseHandler.ListMine)
			r.Get("/courses/mine/newest", courseHandler.MyNewest)
			r.Get("/courses/{id}", courseHandler.GetCourse)
			r.Put("/courses/{id}", courseHandler.UpdateCourse)
			r.Delete("/courses/{id}", courseHandler.DeleteCourse)
			r.Get("/courses/{id}/lectures", courseHandler.ListLectures)
			r.Post("/courses/{id}/lectures", courseHandler.AddLecture)

			r.Get("/lectures/{id}", courseHandler.GetLecture)
			r.Put("/lectures/{id}", courseHandler.UpdateLecture)
			r.Delete("/lectures/{id}", courseHandler.DeleteLecture)

			r.Route("/admin", func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userHandler.ListUsers)
				r.Get("/courses", courseHandler.ListAll)
				r.Post("/courses/{id}/approve", courseHandler.ApproveCourse)
				r.Post("/courses/{id}/reject", courseHandler.RejectCourse)
				r.Post("/lectures/{id}/approve", courseHandler.ApproveLecture)
				r.Post("/lectures/{id}/reject", courseHandler.RejectLecture)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
