// Package seed provides database seeding utilities for development and
// testing. All generated users share the password "password123".
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"devlink/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var statuses = []string{
	"Developer", "Junior Developer", "Senior Developer", "Manager",
	"Student or Learning", "Instructor or Teacher", "Intern",
}

var skillPool = []string{
	"Go", "JavaScript", "TypeScript", "Python", "Rust", "HTML", "CSS",
	"React", "Vue", "PostgreSQL", "Redis", "Docker", "Kubernetes",
	"GraphQL", "gRPC", "Terraform", "AWS", "Linux",
}

var degrees = []string{
	"BSc", "MSc", "BA", "Associate", "Bootcamp Certificate",
}

var fields = []string{
	"Computer Science", "Software Engineering", "Information Systems",
	"Mathematics", "Electrical Engineering", "Web Development",
}

// Seed populates the database with demo users, profiles, and posts.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	profiles, err := createProfiles(db, users)
	if err != nil {
		return fmt.Errorf("failed to create profiles: %w", err)
	}
	log.Printf("created %d profiles", len(profiles))

	posts, err := createPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := createEngagement(db, users, posts); err != nil {
		return fmt.Errorf("failed to create likes and comments: %w", err)
	}

	log.Println("Seeding complete. All users have the password: password123")
	return nil
}

// ClearAll truncates every seeded table.
func ClearAll(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE comments, likes, posts, experiences, educations, profiles, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(db *gorm.DB, count int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		email := fmt.Sprintf("%s%d@%s", strings.ToLower(gofakeit.Username()), i, gofakeit.DomainName())
		users = append(users, &models.User{
			Name:     name,
			Email:    email,
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/200?u=%s", gofakeit.UUID()),
			Password: string(hash),
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func createProfiles(db *gorm.DB, users []*models.User) ([]*models.Profile, error) {
	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	profiles := make([]*models.Profile, 0, len(users))
	for i, user := range users {
		// roughly one in five users has not filled in a profile yet
		if r.Intn(5) == 0 {
			continue
		}

		profile := &models.Profile{
			UserID:         user.ID,
			Handle:         fmt.Sprintf("%s-%d", strings.ToLower(gofakeit.Username()), i),
			Status:         statuses[r.Intn(len(statuses))],
			Skills:         pickSkills(r),
			Company:        gofakeit.Company(),
			Location:       fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
			Bio:            gofakeit.Sentence(12),
			GithubUsername: strings.ToLower(gofakeit.Username()),
		}
		if r.Intn(2) == 0 {
			profile.Website = gofakeit.URL()
		}
		if r.Intn(2) == 0 {
			profile.Social.Twitter = "https://twitter.com/" + profile.GithubUsername
		}
		if r.Intn(3) == 0 {
			profile.Social.Linkedin = "https://www.linkedin.com/in/" + profile.GithubUsername
		}

		for e := 0; e < r.Intn(3); e++ {
			profile.Experience = append(profile.Experience, randomExperience(r))
		}
		for e := 0; e < r.Intn(2); e++ {
			profile.Education = append(profile.Education, randomEducation(r))
		}

		profiles = append(profiles, profile)
	}

	if len(profiles) == 0 {
		return profiles, nil
	}
	if err := db.Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func pickSkills(r *rand.Rand) []string {
	count := 3 + r.Intn(4)
	perm := r.Perm(len(skillPool))
	skills := make([]string, 0, count)
	for _, idx := range perm[:count] {
		skills = append(skills, skillPool[idx])
	}
	return skills
}

func randomExperience(r *rand.Rand) models.Experience {
	from := time.Now().AddDate(-1-r.Intn(6), -r.Intn(12), 0)
	exp := models.Experience{
		Title:       gofakeit.JobTitle(),
		Company:     gofakeit.Company(),
		Location:    gofakeit.City(),
		From:        from,
		Description: gofakeit.Sentence(10),
	}
	if r.Intn(3) == 0 {
		exp.Current = true
	} else {
		to := from.AddDate(0, 6+r.Intn(30), 0)
		if to.After(time.Now()) {
			to = time.Now()
		}
		exp.To = &to
	}
	return exp
}

func randomEducation(r *rand.Rand) models.Education {
	from := time.Now().AddDate(-4-r.Intn(10), 0, 0)
	to := from.AddDate(3+r.Intn(2), 0, 0)
	return models.Education{
		School:       fmt.Sprintf("%s University", gofakeit.City()),
		Degree:       degrees[r.Intn(len(degrees))],
		FieldOfStudy: fields[r.Intn(len(fields))],
		From:         from,
		To:           &to,
		Description:  gofakeit.Sentence(8),
	}
}

func createPosts(db *gorm.DB, users []*models.User, count int) ([]*models.Post, error) {
	// Posts need authors; -users=0 with a post count is a no-op.
	if len(users) == 0 || count <= 0 {
		return nil, nil
	}

	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[r.Intn(len(users))]
		posts = append(posts, &models.Post{
			Text:      gofakeit.Paragraph(1, 2, 8, " "),
			Name:      author.Name,
			Avatar:    author.Avatar,
			UserID:    author.ID,
			CreatedAt: time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour),
		})
	}
	if err := db.Create(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func createEngagement(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	//nolint:gosec // weak randomness is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	var likes []*models.Like
	var comments []*models.Comment
	for _, post := range posts {
		perm := r.Perm(len(users))
		for _, idx := range perm[:r.Intn(min(len(users), 8))] {
			likes = append(likes, &models.Like{
				PostID: post.ID,
				UserID: users[idx].ID,
			})
		}
		for c := 0; c < r.Intn(4); c++ {
			commenter := users[r.Intn(len(users))]
			comments = append(comments, &models.Comment{
				PostID:    post.ID,
				UserID:    commenter.ID,
				Text:      gofakeit.Sentence(8 + r.Intn(10)),
				Name:      commenter.Name,
				Avatar:    commenter.Avatar,
				CreatedAt: post.CreatedAt.Add(time.Duration(r.Intn(48)) * time.Hour),
			})
		}
	}

	if len(likes) > 0 {
		if err := db.Create(&likes).Error; err != nil {
			return err
		}
	}
	if len(comments) > 0 {
		if err := db.Create(&comments).Error; err != nil {
			return err
		}
	}
	log.Printf("created %d likes and %d comments", len(likes), len(comments))
	return nil
}
