// Command promote elevates an existing user to an admin role. It is the
// back-office escape hatch for bootstrapping the first administrator:
//
//	promote -email jane@example.com -role admin
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/claimsaver/go-services/internal/database"
	"github.com/claimsaver/go-services/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	email := flag.String("email", "", "email of the user to promote")
	clerkID := flag.String("clerk-id", "", "identity provider id of the user to promote")
	role := flag.String("role", string(models.RoleAdmin), "target role: admin or super_admin")
	flag.Parse()

	if *email == "" && *clerkID == "" {
		log.Fatal("one of -email or -clerk-id is required")
	}
	target := models.Role(*role)
	if !target.IsAdmin() {
		log.Fatalf("role %q is not an admin role", *role)
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		log.Fatal("MONGODB_URI is required")
	}
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "claimsaver"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, uri, 10*time.Second)
	if err != nil {
		log.Fatalf("cannot connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	filter := bson.M{}
	if *email != "" {
		filter["email"] = *email
	} else {
		filter["clerkId"] = *clerkID
	}
	update := bson.M{"$set": bson.M{
		"role": target,
		"permissions": models.Permissions{
			CanManageUsers:  target == models.RoleSuperAdmin,
			CanManageClaims: true,
			CanViewReports:  true,
		},
		"updatedAt": time.Now().UTC(),
	}}

	res, err := client.Database(dbName).Collection("users").UpdateOne(ctx, filter, update)
	if err != nil {
		log.Fatalf("update failed: %v", err)
	}
	if res.MatchedCount == 0 {
		log.Fatal("no matching user found")
	}
	log.Printf("promoted user to %s", target)
}
