package domain

type Role string

const (
	RoleSalesAdmin      Role = "sales_admin"
	RoleOperationsAdmin Role = "operations_admin"
	RoleCustomer        Role = "customer"

	// RoleAllStaff addresses an admin notification to every staff role.
	RoleAllStaff Role = "all_staff"
)

const systemActorName = "System"

// Actor is the identity performing an operation, as supplied by the
// authentication layer. A nil *Actor means the change is system initiated.
type Actor struct {
	ID   string
	Name string
	Role Role
}

func (a *Actor) IsStaff() bool {
	return a != nil && (a.Role == RoleSalesAdmin || a.Role == RoleOperationsAdmin)
}

func (a *Actor) DisplayName() string {
	if a == nil {
		return systemActorName
	}
	if a.Name != "" {
		return a.Name
	}
	if a.ID != "" {
		return a.ID
	}
	return systemActorName
}

func (a *Actor) IDPtr() *string {
	if a == nil || a.ID == "" {
		return nil
	}
	id := a.ID
	return &id
}

func (a *Actor) NamePtr() *string {
	if a == nil {
		return nil
	}
	name := a.DisplayName()
	return &name
}
