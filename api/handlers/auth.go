package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/oncalldoc/invoice-api/api"
	"github.com/oncalldoc/invoice-api/config"
	"github.com/oncalldoc/invoice-api/databases"
	"github.com/oncalldoc/invoice-api/models"
)

// Auth holds the user store and token secret for the auth endpoints
type Auth struct {
	DB     databases.UserDatabase
	Secret []byte
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     models.Role `json:"role,omitempty"`
	Rate     float64     `json:"rate,omitempty"`
}

// invoiceSettingsRequest uses pointer fields so a handler can tell an absent
// field from an explicitly empty one. Absent fields leave the stored value
// unchanged; present fields are written verbatim.
type invoiceSettingsRequest struct {
	CompanyName   *string  `json:"companyName"`
	InvoiceNumber *string  `json:"invoiceNumber"`
	InvoiceToInfo *string  `json:"invoiceToInfo"`
	PerHourRate   *float64 `json:"perHourRate"`
	PerCallRate   *float64 `json:"perCallRate"`
}

// LoginHandler validates username/password and returns a bearer token
func (h Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	user, err := h.DB.FindOne(r.Context(), bson.M{"username": req.Username})
	if err != nil {
		// same body for unknown user and bad password
		config.ErrorStatus("Invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("Invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	session := api.Session{UserID: user.ID.Hex(), Username: user.Username, Role: user.Role}
	token, err := api.SignToken(session, h.Secret)
	if err != nil {
		config.ErrorStatus("failed to sign token", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user logged in", "username", user.Username)
	_ = json.NewEncoder(w).Encode(loginResponse{Token: token, User: user.Summary()})
}

// RegisterHandler creates a user; only superusers may call it
func (h Auth) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	session, ok := api.SessionFromContext(r.Context())
	if !ok || !session.Role.IsSuperuser() {
		config.ErrorStatus("Access denied: superuser only", http.StatusForbidden, w, fmt.Errorf("role %q", session.Role))
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		config.ErrorStatus("Username and password required", http.StatusBadRequest, w, fmt.Errorf("missing fields"))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		config.ErrorStatus("unknown role", http.StatusBadRequest, w, fmt.Errorf("role %q", req.Role))
		return
	}

	count, err := h.DB.CountDocuments(r.Context(), bson.M{"username": req.Username})
	if err != nil {
		config.ErrorStatus("failed to check username", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("Username already exists", http.StatusBadRequest, w, fmt.Errorf("duplicate username"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Username:  req.Username,
		Password:  string(hashedPassword),
		Role:      role,
		Rate:      req.Rate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := h.DB.InsertOne(r.Context(), user); err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("user created", "username", user.Username, "role", user.Role)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User created",
		"user":    user.Summary(),
	})
}

// ListUsersHandler returns all users without password hashes; superuser only
func (h Auth) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	session, ok := api.SessionFromContext(r.Context())
	if !ok || !session.Role.IsSuperuser() {
		config.ErrorStatus("Access denied: superuser only", http.StatusForbidden, w, fmt.Errorf("role %q", session.Role))
		return
	}

	users, err := h.DB.Find(r.Context(), bson.M{})
	if err != nil {
		config.ErrorStatus("failed to list users", http.StatusInternalServerError, w, err)
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"users": out})
}

// MeHandler returns the calling user's profile, password excluded
func (h Auth) MeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	session, _ := api.SessionFromContext(r.Context())
	uID, err := primitive.ObjectIDFromHex(session.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	user, err := h.DB.FindOne(r.Context(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("User not found", http.StatusNotFound, w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{"user": user.Public()})
}

// UpdateInvoiceSettingsHandler updates the calling user's invoice header
// fields. Absent fields are untouched; a present empty string clears the
// stored value.
func (h Auth) UpdateInvoiceSettingsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	session, _ := api.SessionFromContext(r.Context())
	uID, err := primitive.ObjectIDFromHex(session.UserID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req invoiceSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	user, err := h.DB.FindOne(r.Context(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("User not found", http.StatusNotFound, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.CompanyName != nil {
		set["companyName"] = *req.CompanyName
		user.CompanyName = *req.CompanyName
	}
	if req.InvoiceNumber != nil {
		set["invoiceNumber"] = *req.InvoiceNumber
		user.InvoiceNumber = *req.InvoiceNumber
	}
	if req.InvoiceToInfo != nil {
		set["invoiceToInfo"] = *req.InvoiceToInfo
		user.InvoiceToInfo = *req.InvoiceToInfo
	}
	if req.PerHourRate != nil {
		set["perHourRate"] = *req.PerHourRate
		user.PerHourRate = *req.PerHourRate
	}
	if req.PerCallRate != nil {
		set["perCallRate"] = *req.PerCallRate
		user.PerCallRate = *req.PerCallRate
	}

	if _, err := h.DB.UpdateOne(r.Context(), bson.M{"_id": uID}, bson.M{"$set": set}); err != nil {
		config.ErrorStatus("Failed to update invoice settings", http.StatusInternalServerError, w, err)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Invoice settings updated",
		"user":    user.Public(),
	})
}
