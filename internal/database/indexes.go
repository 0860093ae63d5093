package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogCollections are the two partitions sharing the title rule.
var CatalogCollections = []string{"products", "contactlenses"}

// EnsureCatalogIndexes creates the case-insensitive unique title index on
// each catalog partition plus the browse indexes the listing filter uses.
func EnsureCatalogIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, name := range CatalogCollections {
		indexes := db.Collection(name).Indexes()

		titleIndex := mongo.IndexModel{
			Keys: bson.D{{Key: "title", Value: 1}},
			Options: options.Index().
				SetName("title_unique_ci").
				SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		}
		browseIndex := mongo.IndexModel{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "subCategory", Value: 1},
				{Key: "subSubCategory", Value: 1},
			},
			Options: options.Index().SetName("category_path"),
		}
		createdIndex := mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		}

		log.Printf("EnsureCatalogIndexes: creating indexes on %s", name)
		if _, err := indexes.CreateMany(ctx, []mongo.IndexModel{titleIndex, browseIndex, createdIndex}); err != nil {
			log.Printf("EnsureCatalogIndexes: %s index error: %v", name, err)
			return err
		}
		log.Printf("EnsureCatalogIndexes: %s indexes created", name)
	}
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("userId_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: order indexes created")
	return nil
}

func EnsureRefreshTokenIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("refresh_tokens").Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
		},
	}

	log.Println("EnsureRefreshTokenIndexes: creating refresh token indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		log.Println("EnsureRefreshTokenIndexes: index error:", err)
		return err
	}
	log.Println("EnsureRefreshTokenIndexes: refresh token indexes created")
	return nil
}

// EnsureIndexes runs every bootstrap step and returns the first failure.
// Later steps still run when an earlier one fails.
func EnsureIndexes(db *mongo.Database) error {
	var firstErr error
	for _, ensure := range []func(*mongo.Database) error{
		EnsureCatalogIndexes,
		EnsureUserIndexes,
		EnsureOrderIndexes,
		EnsureRefreshTokenIndexes,
	} {
		if err := ensure(db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
