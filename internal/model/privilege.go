package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Privilege codes checked by the router
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivIngredientView   = "ingredient:view"
	PrivIngredientCreate = "ingredient:create"
	PrivIngredientUpdate = "ingredient:update"
	PrivIngredientDelete = "ingredient:delete"

	PrivCategoryView   = "category:view"
	PrivCategoryCreate = "category:create"
	PrivCategoryUpdate = "category:update"
	PrivCategoryDelete = "category:delete"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivSaleCreate       = "sale:create"
	PrivSaleView         = "sale:view"
	PrivSaleViewAll      = "sale:view_all"
	PrivSaleUpdateStatus = "sale:update_status"

	PrivReportView = "report:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View Employee"},
	{Code: PrivUserCreate, Name: "Create Employee"},
	{Code: PrivUserUpdate, Name: "Update Employee"},
	{Code: PrivUserDelete, Name: "Delete Employee"},
	{Code: PrivUserUpdatePrivilege, Name: "Update Employee Privileges"},
	// Inventory
	{Code: PrivIngredientView, Name: "View Ingredient"},
	{Code: PrivIngredientCreate, Name: "Create Ingredient"},
	{Code: PrivIngredientUpdate, Name: "Update Ingredient"},
	{Code: PrivIngredientDelete, Name: "Delete Ingredient"},
	// Categories
	{Code: PrivCategoryView, Name: "View Category"},
	{Code: PrivCategoryCreate, Name: "Create Category"},
	{Code: PrivCategoryUpdate, Name: "Update Category"},
	{Code: PrivCategoryDelete, Name: "Delete Category"},
	// Products
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	// Sales
	{Code: PrivSaleCreate, Name: "Create Sale"},
	{Code: PrivSaleView, Name: "View Sale"},
	{Code: PrivSaleViewAll, Name: "View All Cashiers' Sales"},
	{Code: PrivSaleUpdateStatus, Name: "Update Sale Status"},
	// Reports
	{Code: PrivReportView, Name: "View Reports"},
}

// CashierPrivileges is the subset granted to the CASHIER role on seed
var CashierPrivileges = []string{
	PrivCategoryView,
	PrivProductView,
	PrivSaleCreate,
	PrivSaleView,
	PrivSaleUpdateStatus,
}
