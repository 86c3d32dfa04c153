package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"genesis-admin/internal/config"
	"genesis-admin/internal/domain/model"
	pg "genesis-admin/internal/infra/db/postgres"
	"genesis-admin/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	settingsRepo := pg.NewSettingsRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo, paymentRepo)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (id=%s, credits=%d, price=$%s)\n", p.Name, p.ID, p.Credits, p.PriceUSD)
		}
		return
	}

	// The launch catalog of the dashboard.
	seed := []struct {
		ID      string
		Name    string
		Credits int64
		Price   string
	}{
		{"plan_1", "Bronze", 500, "5.99"},
		{"plan_2", "Prata", 1200, "11.99"},
		{"plan_3", "Ouro", 3000, "25.99"},
		{"plan_4", "Platina", 7000, "49.99"},
	}

	for _, s := range seed {
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			log.Fatalf("parse price %q: %v", s.Price, err)
		}
		p, err := planUC.Create(ctx, s.ID, s.Name, s.Credits, price)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%s, credits=%d, price=$%s)\n", p.Name, p.ID, p.Credits, p.PriceUSD)
	}

	// Singleton configs start from the launch defaults.
	if err := settingsRepo.SaveCheckoutConfig(ctx, model.DefaultCheckoutConfig()); err != nil {
		log.Fatalf("seed checkout config: %v", err)
	}
	if err := settingsRepo.SaveAsaasConfig(ctx, model.DefaultAsaasConfig()); err != nil {
		log.Fatalf("seed asaas config: %v", err)
	}

	fmt.Println("Seeding complete.")
}
