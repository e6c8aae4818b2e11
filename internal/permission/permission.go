// Package permission decides which back-office actions a user may perform.
//
// Decisions are pure functions of the acting user's role, their optional
// per-user overrides and the requested capability. Nothing here touches the
// database, so every handler and service consults the same table.
package permission

import "errors"

// Role is the coarse classification every user carries exactly one of.
type Role string

const (
	Administrator Role = "administrator"
	Manager       Role = "manager"
	Operator      Role = "operator"
	Customer      Role = "customer"
)

// Roles lists every role in display order.
var Roles = []Role{Administrator, Manager, Operator, Customer}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case Administrator, Manager, Operator, Customer:
		return true
	}
	return false
}

// Capability is a named action checked by Can.
type Capability string

const (
	ViewUsers           Capability = "viewUsers"
	CreateUser          Capability = "createUser"
	EditUser            Capability = "editUser"
	EditUserPermissions Capability = "editUserPermissions"
	ToggleUserActive    Capability = "toggleUserActive"
	DeleteUser          Capability = "deleteUser"

	ViewProducts  Capability = "viewProducts"
	CreateProduct Capability = "createProduct"
	EditProduct   Capability = "editProduct"
	DeleteProduct Capability = "deleteProduct"

	ViewCategories Capability = "viewCategories"
	CreateCategory Capability = "createCategory"
	EditCategory   Capability = "editCategory"
	DeleteCategory Capability = "deleteCategory"

	ViewClients  Capability = "viewClients"
	CreateClient Capability = "createClient"
	EditClient   Capability = "editClient"
	DeleteClient Capability = "deleteClient"

	ViewSales      Capability = "viewSales"
	CreateSale     Capability = "createSale"
	EditSaleStatus Capability = "editSaleStatus"

	ViewQuotes  Capability = "viewQuotes"
	CreateQuote Capability = "createQuote"
	EditQuote   Capability = "editQuote"
	DeleteQuote Capability = "deleteQuote"

	ViewSettings Capability = "viewSettings"
	EditSettings Capability = "editSettings"

	ViewReports Capability = "viewReports"
	ViewAlerts  Capability = "viewAlerts"
)

// Definition describes a capability for permission editors.
type Definition struct {
	Code     Capability `json:"code"`
	Label    string     `json:"label"`
	Category string     `json:"category"`
}

// Catalogue is the complete, ordered set of capabilities.
var Catalogue = []Definition{
	{ViewUsers, "View users", "Users"},
	{CreateUser, "Create users", "Users"},
	{EditUser, "Edit users", "Users"},
	{EditUserPermissions, "Edit user permissions", "Users"},
	{ToggleUserActive, "Activate or deactivate users", "Users"},
	{DeleteUser, "Delete users", "Users"},

	{ViewProducts, "View products", "Products"},
	{CreateProduct, "Create products", "Products"},
	{EditProduct, "Edit products", "Products"},
	{DeleteProduct, "Delete products", "Products"},

	{ViewCategories, "View categories", "Categories"},
	{CreateCategory, "Create categories", "Categories"},
	{EditCategory, "Edit categories", "Categories"},
	{DeleteCategory, "Delete categories", "Categories"},

	{ViewClients, "View clients", "Clients"},
	{CreateClient, "Create clients", "Clients"},
	{EditClient, "Edit clients", "Clients"},
	{DeleteClient, "Delete clients", "Clients"},

	{ViewSales, "View sales", "Sales"},
	{CreateSale, "Create sales", "Sales"},
	{EditSaleStatus, "Change sale status", "Sales"},

	{ViewQuotes, "View quotes", "Quotes"},
	{CreateQuote, "Create quotes", "Quotes"},
	{EditQuote, "Edit quotes", "Quotes"},
	{DeleteQuote, "Delete quotes", "Quotes"},

	{ViewSettings, "View settings", "Settings"},
	{EditSettings, "Edit settings", "Settings"},

	{ViewReports, "View reports", "Reports"},
	{ViewAlerts, "View alerts", "Reports"},
}

var known = func() map[Capability]bool {
	m := make(map[Capability]bool, len(Catalogue))
	for _, d := range Catalogue {
		m[d.Code] = true
	}
	return m
}()

// Known reports whether c is part of the catalogue.
func Known(c Capability) bool {
	return known[c]
}

var managerDenied = map[Capability]bool{
	CreateUser:          true,
	EditUserPermissions: true,
	DeleteUser:          true,
	DeleteCategory:      true,
	DeleteClient:        true,
	DeleteQuote:         true,
	EditSettings:        true,
}

var operatorAllowed = map[Capability]bool{
	ViewProducts:   true,
	CreateProduct:  true,
	EditProduct:    true,
	ViewCategories: true,
	CreateCategory: true,
	EditCategory:   true,
	ViewClients:    true,
	CreateClient:   true,
	EditClient:     true,
	ViewSales:      true,
	CreateSale:     true,
	EditSaleStatus: true,
	ViewQuotes:     true,
	CreateQuote:    true,
	EditQuote:      true,
}

// Template returns the default capability set of a role. Every catalogue
// entry is present in the result; unknown roles get an all-false table.
func Template(role Role) map[Capability]bool {
	t := make(map[Capability]bool, len(Catalogue))
	for _, d := range Catalogue {
		t[d.Code] = templateAllows(role, d.Code)
	}
	return t
}

func templateAllows(role Role, c Capability) bool {
	switch role {
	case Administrator:
		return true
	case Manager:
		return !managerDenied[c]
	case Operator:
		return operatorAllowed[c]
	}
	return false
}

// Principal is the acting user as seen by the evaluator.
type Principal struct {
	ID          string
	Role        Role
	Permissions map[Capability]bool
}

// Can resolves a capability for p: an explicit per-user entry wins,
// then the role template, then deny. Unknown capabilities are denied.
func Can(p Principal, c Capability) bool {
	if !Known(c) {
		return false
	}
	if allowed, ok := p.Permissions[c]; ok {
		return allowed
	}
	return templateAllows(p.Role, c)
}

// Granted lists the capabilities p holds, in catalogue order.
func Granted(p Principal) []Capability {
	out := make([]Capability, 0, len(Catalogue))
	for _, d := range Catalogue {
		if Can(p, d.Code) {
			out = append(out, d.Code)
		}
	}
	return out
}

// Field names an account attribute that users may never change on themselves.
type Field string

const (
	FieldRole        Field = "role"
	FieldActive      Field = "active"
	FieldPermissions Field = "permissions"
	FieldAccount     Field = "account" // deletion of the whole record
)

var ErrSelfModification = errors.New("you cannot change your own role, status, permissions or delete your own account")

// CheckSelfModification rejects any change of a protected field when the
// target record is the acting user, whatever their capabilities.
func CheckSelfModification(actorID, targetID string, field Field) error {
	switch field {
	case FieldRole, FieldActive, FieldPermissions, FieldAccount:
		if actorID != "" && actorID == targetID {
			return ErrSelfModification
		}
	}
	return nil
}

// CanResetPassword reports whether an editor of role editor may set a new
// password on an account of role target. Administrators may reset anyone;
// managers only operators and customers.
func CanResetPassword(editor, target Role) bool {
	switch editor {
	case Administrator:
		return true
	case Manager:
		return target == Operator || target == Customer
	}
	return false
}
