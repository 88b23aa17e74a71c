package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dkwon/comfystore-backend/config"
	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/app/repository"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/lib/pq"
	"github.com/xuri/excelize/v2"
)

// Expected sheet columns:
//
//	name | description | price | category | company | colors | featured | free_shipping | stock | image_url
//
// colors is a comma-separated list; featured and free_shipping accept
// true/false, yes/no or 1/0.
const expectedColumns = 10

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path> <admin_user_id>")
	}

	filePath := os.Args[1]
	adminID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatal("Invalid admin user ID:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath, uint(adminID))
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readProductsFromXLSX(filePath string, adminID uint) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	seen := make(map[string]bool)
	skippedCount := 0
	invalidEnumCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < expectedColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		priceStr := strings.TrimSpace(row[2])
		category := model.ProductCategory(strings.ToLower(strings.TrimSpace(row[3])))
		company := model.ProductCompany(strings.ToLower(strings.TrimSpace(row[4])))
		colorsStr := strings.TrimSpace(row[5])
		featured := parseBool(row[6])
		freeShipping := parseBool(row[7])
		stockStr := strings.TrimSpace(row[8])
		imageURL := strings.TrimSpace(row[9])

		if name == "" || priceStr == "" {
			skippedCount++
			continue
		}

		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price <= 0 {
			skippedCount++
			continue
		}

		if !category.Valid() || !company.Valid() {
			invalidEnumCount++
			skippedCount++
			continue
		}

		stock := 0
		if stockStr != "" {
			stock, err = strconv.Atoi(stockStr)
			if err != nil || stock < 0 {
				skippedCount++
				continue
			}
		}

		// Same name from the same company counts as a duplicate row
		key := fmt.Sprintf("%s|%s", name, company)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		product := model.Product{
			Name:          name,
			Description:   description,
			Price:         price,
			Category:      category,
			Company:       company,
			Colors:        pq.StringArray(parseColors(colorsStr)),
			Featured:      featured,
			FreeShipping:  freeShipping,
			StockQuantity: stock,
			ImageURL:      imageURL,
			UserID:        adminID,
		}

		products = append(products, product)

		if len(products)%500 == 0 {
			fmt.Printf("Processed %d products...\n", len(products))
		}
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid products: %d\n", len(products))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)
	fmt.Printf("  Rows with unknown category/company: %d\n", invalidEnumCount)

	return products, nil
}

func parseColors(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	colors := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			colors = append(colors, c)
		}
	}
	return colors
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
