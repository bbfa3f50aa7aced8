// cmd/seeditems seeds a demo catalog for one tenant.
// Usage: go run ./cmd/seeditems [-tenant 1]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/tinks231/bizbooks/internal/config"
	"github.com/tinks231/bizbooks/internal/infra"
	"github.com/tinks231/bizbooks/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func ptr(s string) *string { return &s }

func demoItems() []model.Item {
	d := decimal.RequireFromString
	return []model.Item{
		{Name: "Basmati Rice 5kg", SKU: "ITEM-0001", ItemCode: ptr("RICE5"), HSNCode: ptr("1006"), Unit: ptr("bag"),
			SellingPrice: d("650"), CostPrice: d("540"), TaxPreference: ptr("GST@5%")},
		{Name: "Toor Dal 1kg", SKU: "ITEM-0002", ItemCode: ptr("DAL1"), HSNCode: ptr("0713"), Unit: ptr("kg"),
			SellingPrice: d("165"), CostPrice: d("140"), TaxPreference: ptr("GST@5%")},
		{Name: "Steel Bolt M8", SKU: "ITEM-0003", HSNCode: ptr("7318"), Unit: ptr("pcs"),
			SellingPrice: d("12.50"), CostPrice: d("8"), TaxPreference: ptr("GST@18%")},
		{Name: "LED Bulb 9W", SKU: "ITEM-0004", ItemCode: ptr("LED9"), HSNCode: ptr("8539"), Unit: ptr("pcs"),
			SellingPrice: d("99"), CostPrice: d("62"), TaxPreference: ptr("GST@12%")},
		{Name: "Copper Wire 1.5mm", SKU: "ITEM-0005", HSNCode: ptr("7408"), Unit: ptr("m"),
			SellingPrice: d("28"), CostPrice: d("21.75"), TaxPreference: ptr("GST@18%")},
		{Name: "Installation Service", SKU: "ITEM-0006", Type: "service", HSNCode: ptr("9954"),
			SellingPrice: d("1500"), TaxPreference: ptr("GST@18%")},
		{Name: "Gift Hamper", SKU: "ITEM-0007", SellingPrice: d("1200"), CostPrice: d("900"), TaxPreference: ptr("Exempt")},
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	tenant := flag.Uint("tenant", 1, "tenant id to seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	items := demoItems()
	for i := range items {
		items[i].TenantID = uint(*tenant)
		items[i].IsActive = true
		if items[i].Type == "" {
			items[i].Type = "goods"
		}
	}

	res := db.WithContext(context.Background()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items)
	if res.Error != nil {
		log.Fatal().Err(res.Error).Msg("seed failed")
	}
	log.Info().Uint("tenant_id", uint(*tenant)).Int64("inserted", res.RowsAffected).Msg("demo catalog seeded")
}
