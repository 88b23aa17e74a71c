package repository

import (
	"testing"

	"github.com/dkwon/comfystore-backend/internal/app/model"
	"github.com/dkwon/comfystore-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hash",
		Name:         "Owner",
		Role:         model.RoleAdmin,
	}
	testDB.Create(user)

	return testDB, NewProductRepository(testDB), user
}

func seedProduct(t *testing.T, repo ProductRepository, userID uint, name string, price float64, category model.ProductCategory, company model.ProductCompany) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		Price:         price,
		Category:      category,
		Company:       company,
		StockQuantity: 10,
		UserID:        userID,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestProductRepository_CreateAndFind(t *testing.T) {
	_, repo, user := setupProductTest(t)

	product := seedProduct(t, repo, user.ID, "Writing Desk", 300, model.CategoryOffice, model.CompanyIkea)

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Writing Desk", found.Name)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepository_BulkCreate(t *testing.T) {
	_, repo, user := setupProductTest(t)

	products := []model.Product{
		{Name: "Chair A", Price: 50, Category: model.CategoryOffice, Company: model.CompanyIkea, UserID: user.ID},
		{Name: "Chair B", Price: 60, Category: model.CategoryOffice, Company: model.CompanyLiddy, UserID: user.ID},
		{Name: "Chair C", Price: 70, Category: model.CategoryOffice, Company: model.CompanyMarcos, UserID: user.ID},
	}

	require.NoError(t, repo.BulkCreate(products, 2))

	all, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductRepository_FindWithFilter(t *testing.T) {
	testDB, repo, user := setupProductTest(t)

	desk := seedProduct(t, repo, user.ID, "Writing Desk", 300, model.CategoryOffice, model.CompanyIkea)
	seedProduct(t, repo, user.ID, "Bar Stool", 80, model.CategoryKitchen, model.CompanyMarcos)
	bed := seedProduct(t, repo, user.ID, "Oak Bed", 700, model.CategoryBedroom, model.CompanyLiddy)
	testDB.Model(&model.Product{}).Where("id = ?", bed.ID).Update("featured", true)

	category := model.CategoryOffice
	products, err := repo.FindWithFilter(ProductFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, desk.ID, products[0].ID)

	company := model.CompanyLiddy
	products, err = repo.FindWithFilter(ProductFilter{Company: &company})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, bed.ID, products[0].ID)

	featured := true
	products, err = repo.FindWithFilter(ProductFilter{Featured: &featured})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, bed.ID, products[0].ID)

	products, err = repo.FindWithFilter(ProductFilter{Search: "Desk"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, desk.ID, products[0].ID)
}

func TestProductRepository_FindWithFilter_Sorting(t *testing.T) {
	_, repo, user := setupProductTest(t)

	seedProduct(t, repo, user.ID, "Mid", 200, model.CategoryOffice, model.CompanyIkea)
	seedProduct(t, repo, user.ID, "Cheap", 100, model.CategoryOffice, model.CompanyIkea)
	seedProduct(t, repo, user.ID, "Pricey", 300, model.CategoryOffice, model.CompanyIkea)

	products, err := repo.FindWithFilter(ProductFilter{SortBy: ProductSortPrice, SortAscending: true})
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Cheap", products[0].Name)
	assert.Equal(t, "Pricey", products[2].Name)

	products, err = repo.FindWithFilter(ProductFilter{SortBy: ProductSortPrice})
	require.NoError(t, err)
	assert.Equal(t, "Pricey", products[0].Name)

	products, err = repo.FindWithFilter(ProductFilter{SortBy: ProductSortPrice, SortAscending: true, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mid", products[0].Name)
}

func TestProductRepository_FindByUserID(t *testing.T) {
	testDB, repo, user := setupProductTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleUser}
	testDB.Create(other)

	seedProduct(t, repo, user.ID, "Mine", 100, model.CategoryOffice, model.CompanyIkea)
	seedProduct(t, repo, other.ID, "Theirs", 100, model.CategoryOffice, model.CompanyIkea)

	products, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mine", products[0].Name)
}

func TestProductRepository_Update(t *testing.T) {
	_, repo, user := setupProductTest(t)

	product := seedProduct(t, repo, user.ID, "Old Name", 100, model.CategoryOffice, model.CompanyIkea)

	product.Name = "New Name"
	product.Price = 150
	require.NoError(t, repo.Update(product))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.Name)
	assert.Equal(t, float64(150), found.Price)
}

func TestProductRepository_UpdateStock(t *testing.T) {
	_, repo, user := setupProductTest(t)

	product := seedProduct(t, repo, user.ID, "Stocked", 100, model.CategoryOffice, model.CompanyIkea)

	// Delta, not absolute
	require.NoError(t, repo.UpdateStock(product.ID, -3))

	found, err := repo.FindByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, found.StockQuantity)
}

func TestProductRepository_Delete(t *testing.T) {
	_, repo, user := setupProductTest(t)

	product := seedProduct(t, repo, user.ID, "Doomed", 100, model.CategoryOffice, model.CompanyIkea)

	require.NoError(t, repo.Delete(product.ID))

	_, err := repo.FindByID(product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
