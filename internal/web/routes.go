package web

import (
	"github.com/dwe-corp/facial-auth/internal/faces"
	"github.com/dwe-corp/facial-auth/internal/web/handlers"
)

func (s *Server) setupRoutes(svc *faces.Service) {
	faceHandler := handlers.NewFaceHandler(svc)

	s.router.Get("/health", handlers.HealthCheck)
	s.router.Post("/recognize", faceHandler.Recognize)
	s.router.Post("/enroll", faceHandler.Enroll)
	s.router.Get("/enrolled-users", faceHandler.EnrolledUsers)
	s.router.Delete("/delete-user/{name}", faceHandler.DeleteUser)
}
