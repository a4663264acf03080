package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/oncalldoc/invoice-api/api"
	"github.com/oncalldoc/invoice-api/config"
	"github.com/oncalldoc/invoice-api/databases"
	"github.com/oncalldoc/invoice-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	secret := []byte(a.Config.JWTSecret)

	r := mux.NewRouter()

	auth := Auth{DB: databases.NewUserDatabase(a.dbHelper), Secret: secret}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	r.Handle("/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")
	r.Handle("/register", api.Middleware(secret, http.HandlerFunc(auth.RegisterHandler))).Methods("POST")
	r.Handle("/users", api.Middleware(secret, http.HandlerFunc(auth.ListUsersHandler))).Methods("GET")
	r.Handle("/users/me", api.Middleware(secret, http.HandlerFunc(auth.MeHandler))).Methods("GET")
	r.Handle("/me/invoice", api.Middleware(secret, http.HandlerFunc(auth.UpdateInvoiceSettingsHandler))).Methods("PUT")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("invoice-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
