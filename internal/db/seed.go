package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedTestData resets the database and populates it with demo accounts.
//
// Behavior:
//  1. Clears all application tables.
//  2. Creates 20 users (10 male, 10 female) with profiles, photos and prompts.
//  3. Sends pending likes between users, some with photo or prompt context.
//  4. Accepts every 3rd like, creating the match and conversation with a few
//     opening messages.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start: children first ---
	for _, table := range []string{"messages", "conversations", "matches", "likes", "photos", "prompts", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	questions := []string{
		"A perfect Sunday looks like...",
		"My most controversial opinion is...",
		"Two truths and a lie:",
		"I'm weirdly good at...",
	}

	// --- Users with profiles ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			Name:         fmt.Sprintf("User %d", i),
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}
		dob := time.Now().AddDate(-(20 + r.Intn(15)), 0, -r.Intn(365))
		now := time.Now()
		profile := Profile{
			UserID:      user.ID,
			DOB:         &dob,
			Location:    "London",
			Gender:      gender,
			CompletedAt: &now,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		for p := 0; p < 2+r.Intn(3); p++ {
			photo := Photo{
				ProfileID: profile.ID,
				URL:       fmt.Sprintf("https://pics.example.com/user%d/%d.jpg", i, p),
				Position:  p,
			}
			if err := db.Create(&photo).Error; err != nil {
				return fmt.Errorf("failed to seed photo: %w", err)
			}
		}

		prompt := Prompt{
			ProfileID: profile.ID,
			Question:  questions[r.Intn(len(questions))],
			Answer:    fmt.Sprintf("Answer from user %d", i),
		}
		if err := db.Create(&prompt).Error; err != nil {
			return fmt.Errorf("failed to seed prompt: %w", err)
		}

		users = append(users, user)
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Likes, some accepted into matches with conversations ---
	openers := []string{
		"Hey! Loved your profile.",
		"That prompt answer made me laugh.",
		"So, London too?",
	}

	counter := 0
	for i := 0; i < 10; i++ {
		for j := 0; j < 4; j++ {
			toIdx := 10 + r.Intn(10)
			from, to := users[i], users[toIdx]

			var exists int64
			db.Model(&Like{}).Where("from_user_id = ? AND to_user_id = ?", from.ID, to.ID).Count(&exists)
			if exists > 0 {
				continue
			}

			like := Like{
				FromUserID: from.ID,
				ToUserID:   to.ID,
				Status:     LikeStatusPending,
			}
			switch r.Intn(3) {
			case 0:
				idx := r.Intn(2)
				like.PhotoIndex = &idx
				like.Comment = "Great shot!"
			case 1:
				like.Comment = "Hey, how's it going?"
			}
			if err := db.Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// every 3rd like gets accepted into a match + conversation
			if counter%3 == 0 {
				like.Status = LikeStatusAccepted
				if err := db.Save(&like).Error; err != nil {
					return fmt.Errorf("failed to accept like: %w", err)
				}

				match := Match{UserAID: from.ID, UserBID: to.ID, SourceLikeID: like.ID}
				if err := db.Create(&match).Error; err != nil {
					return fmt.Errorf("failed to seed match: %w", err)
				}

				conv := Conversation{MatchID: match.ID}
				if err := db.Create(&conv).Error; err != nil {
					return fmt.Errorf("failed to seed conversation: %w", err)
				}

				msgs := []Message{
					{ConversationID: conv.ID, SenderID: to.ID, Content: openers[r.Intn(len(openers))]},
					{ConversationID: conv.ID, SenderID: from.ID, Content: "Haha, thanks for accepting!"},
				}
				for k := range msgs {
					if err := db.Create(&msgs[k]).Error; err != nil {
						return fmt.Errorf("failed to seed message: %w", err)
					}
				}
			}
			counter++
		}
	}
	log.Printf("Seeded %d likes.", counter)

	return nil
}
