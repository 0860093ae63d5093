package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eyewear-store/internal/auth"
	"eyewear-store/internal/models"
)

type signupRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type signinRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type sessionUser struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	IsAdmin  bool                 `json:"isAdmin"`
	Cart     []models.CartItem    `json:"cart"`
	Wishlist []primitive.ObjectID `json:"wishlist"`
}

func newSessionUser(u models.User) sessionUser {
	out := sessionUser{
		ID:       u.ID.Hex(),
		Name:     u.DisplayName(),
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		Cart:     u.Cart,
		Wishlist: u.Wishlist,
	}
	if out.Cart == nil {
		out.Cart = []models.CartItem{}
	}
	if out.Wishlist == nil {
		out.Wishlist = []primitive.ObjectID{}
	}
	return out
}

type issuedTokens struct {
	AccessToken  string
	RefreshToken string
	RefreshID    primitive.ObjectID
	ExpiresIn    int64
}

func issueTokens(ctx context.Context, db *mongo.Database, issuer *auth.Issuer, refreshTTL time.Duration, user models.User) (issuedTokens, error) {
	accessToken, err := issuer.Issue(user.ID, user.Email)
	if err != nil {
		return issuedTokens{}, err
	}

	plain, hash, err := auth.NewRefreshToken()
	if err != nil {
		return issuedTokens{}, err
	}

	now := time.Now()
	res, err := db.Collection("refresh_tokens").InsertOne(ctx, models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(refreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return issuedTokens{}, err
	}
	refreshID, _ := res.InsertedID.(primitive.ObjectID)

	return issuedTokens{
		AccessToken:  accessToken,
		RefreshToken: plain,
		RefreshID:    refreshID,
		ExpiresIn:    issuer.ExpiresIn(),
	}, nil
}

func sessionResponse(tokens issuedTokens, user models.User) gin.H {
	return gin.H{
		"token":        tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
		"expiresIn":    tokens.ExpiresIn,
		"user":         newSessionUser(user),
	}
}

func Signup(db *mongo.Database, issuer *auth.Issuer, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/signup"
		defer handlePanic(c, route)

		var req signupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		user := models.User{
			Name:      strings.TrimSpace(req.Name),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     email,
			Cart:      []models.CartItem{},
			Wishlist:  []primitive.ObjectID{},
			Addresses: []models.Address{},
		}
		user.Name = user.DisplayName()

		hash, err := auth.HashPassword(req.Password)
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "password hash failed", err)
			return
		}
		user.PasswordHash = hash

		ctx, cancel := requestContext(c)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error creating user", err)
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "User already exists")
			return
		}

		now := time.Now()
		user.CreatedAt = now
		user.UpdatedAt = now

		res, err := db.Collection("users").InsertOne(ctx, user)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "User already exists")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error creating user", err)
			return
		}
		user.ID, _ = res.InsertedID.(primitive.ObjectID)

		tokens, err := issueTokens(ctx, db, issuer, refreshTTL, user)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "token generation failed", err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusCreated, sessionResponse(tokens, user))
	}
}

func Signin(db *mongo.Database, issuer *auth.Issuer, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/signin"
		defer handlePanic(c, route)

		var req signinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if errors.Is(err, mongo.ErrNoDocuments) {
			log.Println("[AUTH] [ERROR] signin unknown email")
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error logging in", err)
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			log.Println("[AUTH] [ERROR] signin invalid credentials")
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}

		tokens, err := issueTokens(ctx, db, issuer, refreshTTL, user)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "token generation failed", err)
			return
		}

		log.Println("[AUTH] [INFO] user signed in:", user.Email)
		c.JSON(http.StatusOK, sessionResponse(tokens, user))
	}
}

// Refresh rotates a refresh token: the presented token is revoked and
// linked to its replacement.
func Refresh(db *mongo.Database, issuer *auth.Issuer, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/refresh"
		defer handlePanic(c, route)

		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		tokens := db.Collection("refresh_tokens")
		var stored models.RefreshToken
		err := tokens.FindOne(ctx, bson.M{
			"tokenHash": auth.HashToken(strings.TrimSpace(req.RefreshToken)),
			"revoked":   false,
		}).Decode(&stored)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		if !stored.Usable(time.Now()) {
			_, _ = tokens.UpdateByID(ctx, stored.ID, bson.M{"$set": bson.M{"revoked": true}})
			respondWithError(c, http.StatusUnauthorized, route, "refresh token expired")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": stored.UserID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "User not found")
			return
		}

		issued, err := issueTokens(ctx, db, issuer, refreshTTL, user)
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "token generation failed", err)
			return
		}

		_, _ = tokens.UpdateByID(ctx, stored.ID, bson.M{
			"$set": bson.M{
				"revoked":         true,
				"replacedByToken": issued.RefreshID,
			},
		})

		c.JSON(http.StatusOK, sessionResponse(issued, user))
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/logout"
		defer handlePanic(c, route)

		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
			"tokenHash": auth.HashToken(strings.TrimSpace(req.RefreshToken)),
			"revoked":   false,
		}, bson.M{"$set": bson.M{"revoked": true}})
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "db error", err)
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusUnauthorized, route, "invalid refresh token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/me"
		defer handlePanic(c, route)

		userID, ok := currentUserID(c, route)
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := findUser(ctx, db, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}
		if err != nil {
			respondWithCause(c, http.StatusInternalServerError, route, "Error fetching user", err)
			return
		}

		c.JSON(http.StatusOK, newSessionUser(user))
	}
}

func findUser(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, err
}
