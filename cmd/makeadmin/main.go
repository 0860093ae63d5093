// Command makeadmin grants or revokes admin rights for an existing account.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/bson"

	"eyewear-store/internal/config"
	"eyewear-store/internal/database"
)

const (
	emailFlag  = "email"
	revokeFlag = "revoke"
)

func main() {
	email, revoke := getFlagsValues()
	if email == "" {
		fmt.Fprintf(os.Stderr, "--%s flag: required\n", emailFlag)
		pflag.Usage()
		os.Exit(2)
	}

	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer client.Disconnect(ctx)

	users := client.Database(config.AppEnv.DBName).Collection("users")
	res, err := users.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"isAdmin": !revoke, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Fatal(err)
	}
	if res.MatchedCount == 0 {
		log.Fatalf("no user with email %s", email)
	}

	if revoke {
		log.Printf("[ADMIN] [INFO] admin rights revoked: %s", email)
		return
	}
	log.Printf("[ADMIN] [INFO] admin rights granted: %s", email)
}

func getFlagsValues() (email string, revoke bool) {
	emailValue := pflag.StringP(emailFlag, "e", "", "email of the account to update")
	revokeValue := pflag.Bool(revokeFlag, false, "remove admin rights instead of granting them")
	pflag.Parse()
	return strings.ToLower(strings.TrimSpace(*emailValue)), *revokeValue
}
