package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"job-autopilot/internal/config"
	"job-autopilot/internal/domain/model"
	pg "job-autopilot/internal/infra/db/postgres"
)

func main() {
	// ---- Config ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	profiles := pg.NewProfileRepo(pool)

	// If a stored default profile already exists, do nothing.
	existing, err := profiles.GetProfile(ctx, model.DefaultProfileID)
	if err != nil {
		log.Fatalf("get profile: %v", err)
	}
	if existing.FullName != "" {
		fmt.Printf("default profile already present (%s). No changes.\n", existing.FullName)
		return
	}

	profile := &model.UserProfile{
		ID:       model.DefaultProfileID,
		FullName: "Ada Example",
		Email:    "ada@example.com",
		Phone:    "+1 555 0100",
		Location: "Remote",
		LinkedIn: "https://linkedin.com/in/ada-example",
		Skills:   []string{"go", "postgresql", "redis", "docker", "kubernetes"},
		Rules: model.FilterRules{
			ExcludedKeywords:  []string{"unpaid", "crypto"},
			RemoteOnly:        true,
			ExcludedSeniority: []string{"intern", "junior"},
		},
		Resumes: []model.ResumeProfile{
			{
				ID:          "backend",
				Name:        "Backend Engineering",
				TargetRoles: []string{"backend engineer", "software engineer", "go developer"},
				FilePath:    "resumes/backend.pdf",
			},
			{
				ID:          "platform",
				Name:        "Platform / SRE",
				TargetRoles: []string{"platform engineer", "site reliability", "devops"},
				FilePath:    "resumes/platform.pdf",
			},
		},
	}
	if err := profiles.SaveProfile(ctx, profile); err != nil {
		log.Fatalf("save profile: %v", err)
	}
	fmt.Printf("seeded: default profile for %s with %d resume variants\n", profile.FullName, len(profile.Resumes))

	// A few fixture postings so a first dry run has something to chew on.
	jobs := pg.NewJobRepo(pool)
	fixtures := []model.RawJob{
		{
			Provider: model.ProviderGreenhouse, ProviderJobID: "seed-1",
			Title: "Senior Backend Engineer", Company: "Acme", Location: "Remote - Europe",
			IsRemote: true, Description: "Go, PostgreSQL, Redis.",
			URL: "https://boards.greenhouse.io/acme/jobs/seed-1",
		},
		{
			Provider: model.ProviderLever, ProviderJobID: "seed-2",
			Title: "Platform Engineer", Company: "Globex", Location: "Berlin",
			IsRemote: true, Description: "Kubernetes and infrastructure tooling.",
			URL: "https://jobs.lever.co/globex/seed-2",
		},
		{
			Provider: model.ProviderAshby, ProviderJobID: "seed-3",
			Title: "Office Manager", Company: "Initech", Location: "Austin",
			IsRemote: false, Description: "On-site office operations.",
			URL: "https://jobs.ashbyhq.com/initech/seed-3",
		},
	}
	for i := range fixtures {
		if _, _, err := jobs.Save(ctx, nil, &fixtures[i]); err != nil {
			log.Fatalf("save fixture job %s: %v", fixtures[i].ProviderJobID, err)
		}
	}
	fmt.Printf("seeded: %d fixture jobs\n", len(fixtures))

	fmt.Println("✅ Seeding complete.")
}
