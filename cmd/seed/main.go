// Package main populates the database with sample back-office data.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lojinha/backoffice/internal/config"
	"github.com/lojinha/backoffice/internal/store"
	"github.com/lojinha/backoffice/internal/store/db"
	"github.com/lojinha/backoffice/pkg/bootstrap"
	"github.com/lojinha/backoffice/pkg/config/configloader"
)

const serviceName = "backoffice"

const (
	categoryCount = 5
	productCount  = 20
	orderCount    = 15
)

var departments = []string{"Eletrônicos", "Livros", "Esportes", "Casa e Jardim", "Brinquedos"}

var productNouns = []string{
	"Camiseta", "Caneca", "Mochila", "Teclado", "Fone de Ouvido",
	"Luminária", "Cadeira", "Relógio", "Tênis", "Garrafa",
}

var productAdjectives = []string{
	"Incrível", "Rústico", "Moderno", "Ergonômico", "Prático",
	"Genérico", "Licenciado", "Refinado", "Inteligente", "Pequeno",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("seed failed: %v", err)
		os.Exit(1)
	}
	log.Println("database seeded successfully")
}

// run applies the schema migrations and inserts sample categories, products
// and orders through the regular stores.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}

	logger := bootstrap.NewLogger(cfg.Log.Level)

	if err := store.Migrate(cfg.Database.URL); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("failed to create database connection pool: %w", err)
	}
	defer dbPool.Close()

	return seed(ctx, dbPool, logger)
}

func seed(ctx context.Context, dbPool *pgxpool.Pool, logger *slog.Logger) error {
	categories, err := seedCategories(ctx, store.NewPgCategoryStore(dbPool))
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	logger.InfoContext(ctx, "Categories seeded", slog.Int("count", len(categories)))

	products, err := seedProducts(ctx, store.NewPgProductStore(dbPool), categories)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	logger.InfoContext(ctx, "Products seeded", slog.Int("count", len(products)))

	orders, err := seedOrders(ctx, store.NewPgOrderStore(dbPool), products)
	if err != nil {
		return fmt.Errorf("failed to seed orders: %w", err)
	}
	logger.InfoContext(ctx, "Orders seeded", slog.Int("count", orders))
	return nil
}

func seedCategories(ctx context.Context, categories store.CategoryStore) ([]db.Category, error) {
	created := make([]db.Category, 0, categoryCount)
	for i := 0; i < categoryCount; i++ {
		category, err := categories.Create(ctx, departments[i%len(departments)])
		if err != nil {
			return nil, err
		}
		created = append(created, *category)
	}
	return created, nil
}

func seedProducts(ctx context.Context, products store.ProductStore, categories []db.Category) ([]db.Product, error) {
	created := make([]db.Product, 0, productCount)
	for i := 0; i < productCount; i++ {
		name := fmt.Sprintf("%s %s",
			productNouns[rand.IntN(len(productNouns))],
			productAdjectives[rand.IntN(len(productAdjectives))])
		price := 100 + rand.Int64N(49901)
		imageURL := fmt.Sprintf("https://picsum.photos/seed/%d/200/200", rand.IntN(1000))

		product, err := products.Create(ctx, name,
			fmt.Sprintf("Descrição do produto %s.", name),
			price, pickCategoryIDs(categories), imageURL)
		if err != nil {
			return nil, err
		}
		created = append(created, *product)
	}
	return created, nil
}

func seedOrders(ctx context.Context, orders store.OrderStore, products []db.Product) (int, error) {
	for i := 0; i < orderCount; i++ {
		productIDs := make([]uuid.UUID, 0, 5)
		var total int64
		for j := 0; j < 1+rand.IntN(5); j++ {
			product := products[rand.IntN(len(products))]
			productIDs = append(productIDs, product.ID)
			total += product.Price
		}
		date := time.Now().UTC().AddDate(0, 0, -rand.IntN(365))

		if _, err := orders.Create(ctx, date, productIDs, total); err != nil {
			return i, err
		}
	}
	return orderCount, nil
}

// pickCategoryIDs draws a non-empty random subset of the seeded categories.
func pickCategoryIDs(categories []db.Category) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(categories))
	for _, category := range categories {
		if rand.IntN(2) == 0 {
			ids = append(ids, category.ID)
		}
	}
	if len(ids) == 0 {
		ids = append(ids, categories[rand.IntN(len(categories))].ID)
	}
	return ids
}
