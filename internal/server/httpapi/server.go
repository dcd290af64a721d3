package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/geophoto/internal/logging"
	"github.com/dmitrijs2005/geophoto/internal/server/config"
	"github.com/dmitrijs2005/geophoto/internal/server/models"
	"github.com/dmitrijs2005/geophoto/internal/server/services"
)

type userSvc interface {
	Login(ctx context.Context, googleID, email, name, profilePicture string) (*models.User, string, error)
	Get(ctx context.Context, id string) (*models.User, error)
}

type photoSvc interface {
	Upload(ctx context.Context, req *services.UploadRequest) (*models.Photo, error)
	Delete(ctx context.Context, photoID, requesterID string) error
	List(ctx context.Context, ownerID string) ([]*models.Photo, error)
}

// Server is the HTTP front of the photo API.
type Server struct {
	address               string
	users                 userSvc
	photos                photoSvc
	logger                logging.Logger
	jwtSecret             []byte
	maxUploadRequestBytes int64
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService, ps *services.PhotoService) *Server {
	return &Server{
		address:               cfg.EndpointAddrHTTP,
		users:                 us,
		photos:                ps,
		logger:                l.With("module", "http_server"),
		jwtSecret:             []byte(cfg.SecretKey),
		maxUploadRequestBytes: cfg.MaxUploadRequestBytes,
	}
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	engine.GET("/", s.health)

	api := engine.Group("/api")
	{
		api.POST("/users/login", s.login)
		api.GET("/users/me", s.authRequired(), s.me)

		api.GET("/photos", s.listPhotos)
		api.POST("/photos", s.authRequired(), s.uploadPhoto)
		api.DELETE("/photos/:id", s.authRequired(), s.deletePhoto)
	}

	return engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "geophoto api is running",
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
