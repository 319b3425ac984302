package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"sportpredict/internal/db"
	"sportpredict/internal/domain"
	"sportpredict/internal/repository"
	"sportpredict/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// Seeds a three-deep referral chain (alice -> bob -> carol -> dave) so the
// network builder and commission fan-out can be exercised against a local
// database. Expects DATABASE_URL and JWT_SECRET.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	referrals := service.NewReferralService(pool)
	ctx := context.Background()

	names := []string{"alice", "bob", "carol", "dave"}
	users := make([]*domain.User, 0, len(names))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	for _, name := range names {
		email := name + "@example.test"
		u, err := userRepo.GetByEmail(ctx, email)
		if err == nil {
			log.Printf("user %s already exists id=%d", name, u.ID)
			users = append(users, u)
			continue
		}

		u = &domain.User{Email: email, Username: name, PasswordHash: string(hash)}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("create %s: %v", name, err)
		}
		log.Printf("created %s id=%d code=%s", name, u.ID, u.ReferralCode)
		users = append(users, u)
	}

	// Chain each user to the previous one's code.
	for i := 1; i < len(users); i++ {
		if err := referrals.Attach(ctx, users[i-1].ReferralCode, users[i].ID); err != nil {
			log.Printf("attach %s -> %s: %v", names[i-1], names[i], err)
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)
	for i, u := range users {
		token, err := service.GenerateJWT(u.ID)
		if err != nil {
			log.Fatalf("generate token: %v", err)
		}
		fmt.Printf("%s token=%s\n", names[i], token)
	}
}
